package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/ironsheep/votecards/internal/classify"
	"github.com/ironsheep/votecards/internal/compose"
	"github.com/ironsheep/votecards/internal/detection"
	"github.com/ironsheep/votecards/internal/imaging"
	"github.com/ironsheep/votecards/internal/ocr"
	"github.com/ironsheep/votecards/internal/pipeline"
	"github.com/ironsheep/votecards/internal/writer"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "votecards_generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithField("tool", params.Name).WithError(err).Warn("Tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "votecards_dimensions":
		return s.handleDimensions(args)
	case "votecards_ocr":
		return s.handleOCR(args)
	case "votecards_classify":
		return s.handleClassify(args)
	case "votecards_annotate":
		return s.handleAnnotate(args)
	case "votecards_generate":
		return s.handleGenerate(args)
	case "votecards_ocr_info":
		return ocr.GetInfo(), nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

type pathArgs struct {
	Path string `json:"path"`
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) handleDimensions(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type paragraphResult struct {
	Index  int              `json:"index"`
	Text   string           `json:"text"`
	Bounds detection.Bounds `json:"bounds"`
}

type ocrResult struct {
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	TokenCount   int               `json:"token_count"`
	Tokens       []detection.Token `json:"tokens"`
	Lines        []string          `json:"lines"`
	Paragraphs   []paragraphResult `json:"paragraphs"`
	MedianHeight float64           `json:"median_height"`
	Warnings     []string          `json:"warnings,omitempty"`
}

func (s *Server) analyze(path string) (*pipeline.Result, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Analyze(context.Background(), img)
}

func (s *Server) handleOCR(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}

	out := &ocrResult{
		Width:        res.Width,
		Height:       res.Height,
		TokenCount:   len(res.Tokens),
		Tokens:       res.Tokens,
		Lines:        make([]string, 0, len(res.Layout.Lines)),
		Paragraphs:   make([]paragraphResult, 0, len(res.Layout.Paragraphs)),
		MedianHeight: res.Layout.MedianHeight,
		Warnings:     errorStrings(res.Warnings),
	}
	for _, l := range res.Layout.Lines {
		out.Lines = append(out.Lines, l.Text)
	}
	for _, p := range res.Layout.Paragraphs {
		out.Paragraphs = append(out.Paragraphs, paragraphResult{Index: p.Index, Text: p.Text, Bounds: p.Bounds})
	}
	return out, nil
}

type classifyArgs struct {
	Path         string  `json:"path"`
	Previews     bool    `json:"previews"`
	PreviewScale float64 `json:"preview_scale"`
}

type regionResult struct {
	Role    classify.Role    `json:"role"`
	Text    string           `json:"text"`
	Bounds  detection.Bounds `json:"bounds"`
	Code    string           `json:"code,omitempty"`
	Count   int              `json:"count,omitempty"`
	Items   []string         `json:"items,omitempty"`
	Preview *imaging.Preview `json:"preview,omitempty"`
}

type classifyResult struct {
	Width    int                   `json:"width"`
	Height   int                   `json:"height"`
	Regions  []regionResult        `json:"regions"`
	Counts   map[classify.Role]int `json:"counts"`
	Warnings []string              `json:"warnings,omitempty"`
}

func (s *Server) handleClassify(args json.RawMessage) (interface{}, error) {
	var a classifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.PreviewScale == 0 {
		a.PreviewScale = 1.0
	}
	res, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}

	out := &classifyResult{
		Width:    res.Width,
		Height:   res.Height,
		Regions:  make([]regionResult, 0, len(res.Classification.Regions)),
		Counts:   res.Classification.Counts(),
		Warnings: errorStrings(res.Warnings),
	}
	for _, r := range res.Classification.Regions {
		rr := regionResult{
			Role:   r.Role,
			Text:   r.Text,
			Bounds: r.Bounds,
			Code:   r.Code,
			Count:  r.Count,
			Items:  r.Items,
		}
		if a.Previews && !r.Bounds.Empty() {
			img, err := s.cache.Load(a.Path)
			if err != nil {
				return nil, err
			}
			if rr.Preview, err = imaging.CropPreview(img, r.Bounds.Rect(), a.PreviewScale); err != nil {
				return nil, err
			}
		}
		out.Regions = append(out.Regions, rr)
	}
	return out, nil
}

var roleColors = map[classify.Role]color.NRGBA{
	classify.RoleTitle:        {R: 220, G: 40, B: 40, A: 255},
	classify.RoleDescription:  {R: 230, G: 140, B: 20, A: 255},
	classify.RolePro:          {R: 30, G: 160, B: 60, A: 255},
	classify.RoleCon:          {R: 150, G: 40, B: 160, A: 255},
	classify.RoleHeader:       {R: 20, G: 110, B: 220, A: 255},
	classify.RoleStateLabel:   {R: 0, G: 170, B: 170, A: 255},
	classify.RoleUnclassified: {R: 120, G: 120, B: 120, A: 255},
}

type annotateResult struct {
	*imaging.Preview
	Counts map[classify.Role]int `json:"counts"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, err := s.analyze(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	labels := make([]imaging.Label, 0, len(res.Classification.Regions))
	for _, r := range res.Classification.Regions {
		labels = append(labels, imaging.Label{
			Rect:  r.Bounds.Rect(),
			Text:  string(r.Role),
			Color: roleColors[r.Role],
		})
	}
	annotated, err := imaging.Annotate(img, labels, s.fonts)
	if err != nil {
		return nil, err
	}
	preview, err := imaging.EncodePreview(annotated)
	if err != nil {
		return nil, err
	}
	return &annotateResult{Preview: preview, Counts: res.Classification.Counts()}, nil
}

type generateArgs struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
	Dated     bool   `json:"dated"`
}

type generateResult struct {
	OutputDir string                `json:"output_dir"`
	Files     map[string]string     `json:"files"`
	Lines     map[string][]string   `json:"lines"`
	Counts    map[classify.Role]int `json:"counts"`
	Warnings  []string              `json:"warnings,omitempty"`
	Failed    []string              `json:"failed,omitempty"`
}

func (s *Server) handleGenerate(args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.OutputDir == "" {
		return nil, errors.New("path and output_dir are required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, runErr := s.pipeline.Run(context.Background(), img)
	if res == nil {
		return nil, runErr
	}

	dir := writer.Dir{Root: a.OutputDir}
	if a.Dated {
		var words []string
		for _, t := range res.Tokens {
			words = append(words, t.Text)
		}
		dir = writer.Dated(a.OutputDir, strings.Join(words, " "))
	}
	files, saveErr := s.pipeline.Save(res, dir)

	out := &generateResult{
		OutputDir: dir.Root,
		Files:     files,
		Lines:     make(map[string][]string, len(res.Artifacts)),
		Counts:    res.Classification.Counts(),
		Warnings:  errorStrings(res.Warnings),
	}
	for _, name := range compose.ArtifactNames {
		if art, ok := res.Artifacts[name]; ok {
			out.Lines[name] = art.Lines
		}
	}
	for _, err := range []error{runErr, saveErr} {
		if err != nil {
			out.Failed = append(out.Failed, err.Error())
		}
	}
	if len(out.Files) == 0 && len(out.Failed) > 0 {
		return nil, fmt.Errorf("no card written: %w", errors.Join(runErr, saveErr))
	}
	return out, nil
}
