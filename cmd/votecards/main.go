package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/votecards/internal/config"
	"github.com/ironsheep/votecards/internal/imaging"
	"github.com/ironsheep/votecards/internal/ocr"
	"github.com/ironsheep/votecards/internal/pipeline"
	"github.com/ironsheep/votecards/internal/server"
	"github.com/ironsheep/votecards/internal/writer"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	setupLogging()

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("votecards %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	case "serve":
		err = runServe(args)
	case "generate":
		err = runGenerate(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		logrus.WithError(err).Fatal("votecards failed")
	}
}

func printUsage() {
	fmt.Println("votecards - turn vote result charts into shareable cards")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  votecards [serve] [-config file] [-words file]")
	fmt.Println("  votecards generate -input chart.png[,dir...] -outdir dir [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve            Run the MCP server on stdin/stdout (default)")
	fmt.Println("  generate         Write 01_title.png, 02_pros_cons.png and 03_visual.png")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  VOTECARDS_LOG_LEVEL=debug    Log level (debug, info, warn, error)")
	fmt.Println()
	fmt.Println("Run 'votecards generate -h' for the generate options.")
}

// setupLogging sends logs to stderr; stdout is for MCP protocol.
func setupLogging() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)

	if v := os.Getenv("VOTECARDS_LOG_LEVEL"); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			logrus.WithField("value", v).Warn("Unknown VOTECARDS_LOG_LEVEL, using info")
			return
		}
		logrus.SetLevel(level)
	}
}

// newEngine replays recorded words when wordsPath is set and uses Tesseract
// otherwise.
func newEngine(cfg *config.Config, wordsPath string) (ocr.Engine, error) {
	if wordsPath != "" {
		words, err := ocr.LoadWords(wordsPath)
		if err != nil {
			return nil, err
		}
		return &ocr.Static{Words: words}, nil
	}
	if info := ocr.GetInfo(); !info.Available {
		logrus.WithField("reason", info.Error).Warn("Tesseract is not available; recognition will fail")
	}
	return ocr.NewTesseract(cfg.OCR.Language, cfg.OCR.PageSegMode), nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	wordsPath := fs.String("words", "", "replay OCR words from a JSON file instead of running Tesseract")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	engine, err := newEngine(&cfg, *wordsPath)
	if err != nil {
		return err
	}

	srv, err := server.New(&cfg, engine, logrus.StandardLogger())
	if err != nil {
		return err
	}
	srv.Version = Version

	logrus.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("Votecards MCP server starting")
	return srv.Run()
}

type generateOptions struct {
	inputs  []string
	outDir  string
	dated   bool
	workers int
	timeout time.Duration
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	input := fs.String("input", "", "chart image or directory of images, comma separated")
	outDir := fs.String("outdir", "cards", "output directory")
	configPath := fs.String("config", "", "YAML configuration file")
	wordsPath := fs.String("words", "", "replay OCR words from a JSON file instead of running Tesseract")
	workers := fs.Int("workers", 4, "images processed in parallel")
	dated := fs.Bool("dated", false, "write into a Month-Year folder taken from a 'Date: mm/dd/yyyy' line")
	timeout := fs.Duration("timeout", 2*time.Minute, "per image time limit, 0 for none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		fs.Usage()
		return errors.New("-input is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	engine, err := newEngine(&cfg, *wordsPath)
	if err != nil {
		return err
	}
	p, err := pipeline.New(engine, &cfg, logrus.StandardLogger())
	if err != nil {
		return err
	}

	inputs, err := expandInputs(strings.Split(*input, ","))
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no images found in %q", *input)
	}

	return generate(context.Background(), p, generateOptions{
		inputs:  inputs,
		outDir:  *outDir,
		dated:   *dated,
		workers: *workers,
		timeout: *timeout,
	})
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// expandInputs replaces directories with the images they contain, sorted.
func expandInputs(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// generate runs one pipeline per input on a bounded worker pool. A failed
// image is logged and does not stop the others.
func generate(ctx context.Context, p *pipeline.Pipeline, opts generateOptions) error {
	cache := imaging.NewImageCache()

	var (
		mu     sync.Mutex
		failed []string
	)
	fail := func(path string, err error) {
		logrus.WithField("input", path).WithError(err).Error("Chart not processed")
		mu.Lock()
		failed = append(failed, path)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.workers > 0 {
		g.SetLimit(opts.workers)
	}
	var folders []string
	if len(opts.inputs) > 1 {
		folders = inputFolders(opts.inputs)
	}
	for i, path := range opts.inputs {
		path := path
		folder := ""
		if folders != nil {
			folder = folders[i]
		}
		g.Go(func() error {
			if err := processOne(ctx, p, cache, path, opts, folder); err != nil {
				fail(path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return fmt.Errorf("%d of %d charts failed: %s", len(failed), len(opts.inputs), strings.Join(failed, ", "))
	}
	return nil
}

// inputFolders names one output folder per input after its file stem. Inputs
// sharing a stem get their parent directory's name prepended, and a numeric
// suffix when that still clashes.
func inputFolders(inputs []string) []string {
	stems := make([]string, len(inputs))
	seen := make(map[string]int, len(inputs))
	for i, in := range inputs {
		stems[i] = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		seen[stems[i]]++
	}

	names := make([]string, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		name := stems[i]
		if seen[name] > 1 {
			name = filepath.Base(filepath.Dir(in)) + "_" + name
		}
		for base, n := name, 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// processOne runs one chart and saves its cards under opts.outDir, inside
// folder when it is not empty.
func processOne(ctx context.Context, p *pipeline.Pipeline, cache *imaging.ImageCache, path string, opts generateOptions, folder string) error {
	log := logrus.WithField("input", path)
	defer cache.Evict(path)

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	img, err := cache.Load(path)
	if err != nil {
		return err
	}

	start := time.Now()
	res, runErr := p.Run(ctx, img)
	if res == nil {
		return runErr
	}
	for _, w := range res.Warnings {
		log.WithError(w).Warn("Degraded output")
	}

	root := opts.outDir
	if opts.dated {
		words := make([]string, len(res.Tokens))
		for i, t := range res.Tokens {
			words[i] = t.Text
		}
		root = filepath.Join(root, writer.MonthFolder(strings.Join(words, " ")))
	}
	if folder != "" {
		root = filepath.Join(root, folder)
	}
	dir := writer.Dir{Root: root}

	paths, saveErr := p.Save(res, dir)
	log.WithFields(logrus.Fields{
		"cards":    len(paths),
		"dir":      dir.Root,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Chart processed")
	return errors.Join(runErr, saveErr)
}
