package llm

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"

	"github.com/jperrin/job-set-match/internal/config"
	"github.com/jperrin/job-set-match/internal/prompts"
)

// VertexAIClient wraps the Vertex AI Gemini API for offer analysis and
// cover letter generation.
type VertexAIClient struct {
	client          *genai.Client
	modelName       string
	maxOutputTokens int32
	analysisTemp    float32
	coverLetterTemp float32
	system          string
}

// NewVertexAIClient creates a new Vertex AI client. systemContext is the
// formatted personal-documents block appended to the system prompt; it may
// be empty.
func NewVertexAIClient(ctx context.Context, cfg *config.Config, systemContext string) (*VertexAIClient, error) {
	client, err := genai.NewClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	system := prompts.SystemPrompt
	if systemContext != "" {
		system += "\n\n" + systemContext
	}

	return &VertexAIClient{
		client:          client,
		modelName:       cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
		analysisTemp:    cfg.Temperature,
		coverLetterTemp: cfg.CoverLetterTemperature,
		system:          system,
	}, nil
}

func (v *VertexAIClient) newModel(temperature float32) *genai.GenerativeModel {
	model := v.client.GenerativeModel(v.modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(v.maxOutputTokens)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(v.system)},
	}
	return model
}

// AnalyzeDocument sends the PDF and the analysis prompt to the model and
// returns the raw response text plus the output token count.
func (v *VertexAIClient) AnalyzeDocument(ctx context.Context, pdfData []byte) (string, int32, error) {
	model := v.newModel(v.analysisTemp)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: pdfData},
		genai.Text(prompts.AnalysisPrompt),
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to analyze document: %w", err)
	}
	return extractResponse(resp)
}

// GenerateCoverLetter sends a cover-letter prompt using the higher
// generation temperature.
func (v *VertexAIClient) GenerateCoverLetter(ctx context.Context, prompt string) (string, int32, error) {
	model := v.newModel(v.coverLetterTemp)
	model.ResponseMIMEType = ""

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate cover letter: %w", err)
	}
	return extractResponse(resp)
}

// RepairJSON re-asks the model to fix a malformed JSON response, at
// temperature zero.
func (v *VertexAIClient) RepairJSON(ctx context.Context, malformed string) (string, int32, error) {
	model := v.newModel(0)

	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(prompts.RecoveryPrompt, malformed)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to repair response: %w", err)
	}
	return extractResponse(resp)
}

// Close closes the underlying Vertex AI client.
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}

func extractResponse(resp *genai.GenerateContentResponse) (string, int32, error) {
	if len(resp.Candidates) == 0 {
		return "", 0, fmt.Errorf("no response candidates returned")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	var outputTokens int32
	if resp.UsageMetadata != nil {
		outputTokens = resp.UsageMetadata.CandidatesTokenCount
	}

	return result, outputTokens, nil
}
