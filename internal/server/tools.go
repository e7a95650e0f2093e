package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the chart image (PNG or JPEG)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "votecards_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "votecards_ocr",
			Description: "Recognize the text of a vote chart and group it into lines and paragraphs. Returns every token above the confidence floor with its bounding box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "votecards_classify",
			Description: "Classify the text of a vote chart into title, description, pro, con, header, state_label and unclassified regions. Use previews to check what each region covers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"previews": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach a base64 PNG crop of every region. Default false",
						"default":     false,
					},
					"preview_scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for previews (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "votecards_annotate",
			Description: "Return the chart with every classified region outlined and tagged with its role, as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "votecards_generate",
			Description: "Render the title card, the pros/cons card and the visual card (state labels and headers redrawn larger) and write them as 01_title.png, 02_pros_cons.png and 03_visual.png.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write the cards to",
					},
					"dated": map[string]interface{}{
						"type":        "boolean",
						"description": "Write into a Month-Year subfolder taken from a 'Date: mm/dd/yyyy' line in the chart. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "output_dir"},
			},
		},
		{
			Name:        "votecards_ocr_info",
			Description: "Report whether the Tesseract OCR backend is available and its version.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
