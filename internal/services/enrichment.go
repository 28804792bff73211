package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/civigo/grievance-backend/internal/models"
)

// Enricher classifies complaint text into a structured analysis. The
// lifecycle service holds an injected handle rather than a package
// global so tests can force the failure path.
type Enricher interface {
	Classify(ctx context.Context, description, subject string) (models.AIAnalysis, error)
}

// FallbackAnalysis is the fixed value substituted whenever the provider
// errors or returns something unparseable. Grievance creation never
// fails because of the enrichment dependency.
func FallbackAnalysis() models.AIAnalysis {
	return models.AIAnalysis{
		Summary:    "Analysis failed",
		Department: "General",
		Priority:   "Medium",
		Sentiment:  "Neutral",
		Category:   "Uncategorized",
	}
}

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"

// enrichmentTimeout bounds the provider round-trip. The call sits on the
// critical path of every submission, so a hung provider must not hang
// creation.
const enrichmentTimeout = 15 * time.Second

// GeminiEnricher calls the Gemini text-completion API.
type GeminiEnricher struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGeminiEnricher(apiKey string) *GeminiEnricher {
	return &GeminiEnricher{
		apiKey:   apiKey,
		endpoint: defaultGeminiEndpoint,
		client:   &http.Client{Timeout: enrichmentTimeout},
	}
}

// SetEndpoint overrides the provider URL; test hook.
func (e *GeminiEnricher) SetEndpoint(url string) {
	e.endpoint = url
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (e *GeminiEnricher) Classify(ctx context.Context, description, subject string) (models.AIAnalysis, error) {
	prompt := fmt.Sprintf(`
Analyze the following grievance complaint and provide a structured JSON response.

Complaint Subject: %s
Complaint Description: %s

Return ONLY a JSON object with the following fields:
- summary: A concise 1-sentence summary of the issue.
- department: The most appropriate department (e.g., Roads, Sanitation, Electrical, Water Supply, Police, Health).
- priority: "High", "Medium", or "Low" based on urgency and severity.
- sentiment: "Negative", "Neutral", or "Positive".
- category: A short 1-2 word category (e.g., "Pothole", "Garbage", "Street Light").

Do not include markdown formatting. Just the raw JSON string.
`, subject, description)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return models.AIAnalysis{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"?key="+e.apiKey, bytes.NewReader(body))
	if err != nil {
		return models.AIAnalysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return models.AIAnalysis{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.AIAnalysis{}, fmt.Errorf("enrichment provider returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.AIAnalysis{}, err
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return models.AIAnalysis{}, err
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return models.AIAnalysis{}, errors.New("enrichment provider returned no candidates")
	}

	return parseAnalysis(gr.Candidates[0].Content.Parts[0].Text)
}

// parseAnalysis strips any surrounding code-fence markers the model may
// add despite instructions, then decodes the JSON object.
func parseAnalysis(text string) (models.AIAnalysis, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var analysis models.AIAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return models.AIAnalysis{}, err
	}
	if analysis.Summary == "" && analysis.Department == "" && analysis.Category == "" {
		return models.AIAnalysis{}, errors.New("enrichment response missing expected fields")
	}
	return analysis, nil
}
