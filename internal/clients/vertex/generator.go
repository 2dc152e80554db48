package vertex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/gcp"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/envutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

// summaryPrompt asks for pure pointer-form takeaways; the output is served
// to clients verbatim as a markdown report.
const summaryPrompt = `Analyze the provided model results document (charts and tables) and produce key takeaways in pure pointer form. Do not include any extra commentary or negative remarks about the modeling. Include what each chart represents and its key takeaway, 3-5 insights per section, and close with one section of actionable insights. Output only the pointers.`

// DocumentGenerator turns a precursor artifact (a rendered model-results
// document) into a derived summary. Generation is synchronous: when
// Summarize returns, the content is complete.
type DocumentGenerator interface {
	Summarize(ctx context.Context, mimeType string, document []byte) (string, error)
}

type geminiGenerator struct {
	log     *logger.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewDocumentGenerator(ctx context.Context, log *logger.Logger) (DocumentGenerator, error) {
	serviceLog := log.With("service", "GeminiDocumentGenerator")

	projectID := envutil.Get("VERTEX_PROJECT_ID", "insightsmix")
	location := envutil.Get("VERTEX_LOCATION", "us-central1")
	model := envutil.Get("GENAI_MODEL", "gemini-1.5-pro-002")

	client, err := genai.NewClient(ctx, projectID, location, gcp.ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiGenerator{
		log:     serviceLog,
		client:  client,
		model:   model,
		timeout: envutil.Duration("GENAI_CALL_TIMEOUT", 2*time.Minute),
	}, nil
}

func (g *geminiGenerator) Summarize(ctx context.Context, mimeType string, document []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	m := g.client.GenerativeModel(g.model)
	m.SetMaxOutputTokens(8192)
	m.SetTemperature(1)
	m.SetTopP(0.95)
	m.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	resp, err := m.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: document},
		genai.Text(summaryPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
				sb.WriteString("\n")
			}
		}
	}
	out := sb.String()
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("generator returned empty summary")
	}
	return out, nil
}
