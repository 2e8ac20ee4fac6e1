package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/barhand/barhand-backend/internal/clients/gcp"
	"github.com/barhand/barhand-backend/internal/clients/ollama"
	"github.com/barhand/barhand-backend/internal/pkg/logger"
)

// External capabilities the core consumes. All of them are best-effort
// network calls; callers must treat failure as recoverable and fall back to
// the safe default instead of blocking their primary operation.

// NameMatchVerifier answers whether two ingredient name strings denote the
// same product.
type NameMatchVerifier interface {
	SameProduct(ctx context.Context, inputName, candidateName string) (bool, error)
}

// OcrTranscriber extracts text from a recipe page image.
type OcrTranscriber interface {
	Transcribe(ctx context.Context, img []byte) (string, error)
}

// RecipeTextParser turns OCR output into structured recipes.
type RecipeTextParser interface {
	Parse(ctx context.Context, text string) ([]ParsedRecipe, error)
}

type ParsedIngredient struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Name   string `json:"name"`
}

type ParsedRecipe struct {
	Name        string             `json:"name"`
	Page        *int               `json:"page,omitempty"`
	Ingredients []ParsedIngredient `json:"ingredients"`
	Method      string             `json:"method,omitempty"`
	Garnish     string             `json:"garnish,omitempty"`
}

// -------------------- name match verifier --------------------

const verifierSystemPrompt = `You are matching cocktail ingredient names against a product catalog.
Decide whether two names denote the SAME product. Different brands of the
same spirit are NOT the same product. Spelling variations, abbreviations and
reordering of the same brand ARE the same product.`

var verifierSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"match":     map[string]any{"type": "boolean"},
		"reasoning": map[string]any{"type": "string"},
	},
	"required": []string{"match", "reasoning"},
}

type llmNameMatchVerifier struct {
	log *logger.Logger
	llm ollama.Client
}

func NewNameMatchVerifier(llm ollama.Client, baseLog *logger.Logger) NameMatchVerifier {
	return &llmNameMatchVerifier{log: baseLog.With("service", "NameMatchVerifier"), llm: llm}
}

func (v *llmNameMatchVerifier) SameProduct(ctx context.Context, inputName, candidateName string) (bool, error) {
	user := fmt.Sprintf("Input name: %q\nCatalog name: %q\n\nAre these the same product? Return JSON with: match (boolean), reasoning.", inputName, candidateName)
	obj, err := v.llm.GenerateJSON(ctx, verifierSystemPrompt, user, verifierSchema)
	if err != nil {
		return false, err
	}
	match, ok := obj["match"].(bool)
	if !ok {
		return false, fmt.Errorf("verifier response missing match field")
	}
	return match, nil
}

// -------------------- OCR transcribers --------------------

type gcpOcrTranscriber struct {
	log    *logger.Logger
	vision gcp.Vision
}

func NewGcpOcrTranscriber(vision gcp.Vision, baseLog *logger.Logger) OcrTranscriber {
	return &gcpOcrTranscriber{log: baseLog.With("service", "GcpOcrTranscriber"), vision: vision}
}

func (t *gcpOcrTranscriber) Transcribe(ctx context.Context, img []byte) (string, error) {
	res, err := t.vision.OCRImageBytes(ctx, img)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

const ocrSystemPrompt = `You are an OCR assistant. Read and transcribe text from images accurately.
Only transcribe what you can actually see, never guess or invent content.`

var ocrSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"text": map[string]any{"type": "string"},
	},
	"required": []string{"text"},
}

type ollamaOcrTranscriber struct {
	log *logger.Logger
	llm ollama.Client
}

func NewOllamaOcrTranscriber(llm ollama.Client, baseLog *logger.Logger) OcrTranscriber {
	return &ollamaOcrTranscriber{log: baseLog.With("service", "OllamaOcrTranscriber"), llm: llm}
}

func (t *ollamaOcrTranscriber) Transcribe(ctx context.Context, img []byte) (string, error) {
	user := "Transcribe all text on this page. Preserve line breaks. Return JSON with: text."
	obj, err := t.llm.GenerateJSONWithImages(ctx, ocrSystemPrompt, user, [][]byte{img}, ocrSchema)
	if err != nil {
		return "", err
	}
	text, _ := obj["text"].(string)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("transcription returned no text")
	}
	return text, nil
}

// -------------------- recipe parser --------------------

const parserSystemPrompt = `You extract cocktail recipes from transcribed book pages.
Convert fraction amounts to decimals ("1 1/2" becomes "1.5"). Use short unit
names ("oz" not "ounce", "tsp" not "teaspoon"). Only output recipes actually
present in the text.`

var recipesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"recipes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
					"page": map[string]any{"type": []string{"integer", "null"}},
					"ingredients": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"amount": map[string]any{"type": "string"},
								"unit":   map[string]any{"type": "string"},
								"name":   map[string]any{"type": "string"},
							},
							"required": []string{"name"},
						},
					},
					"method":  map[string]any{"type": "string"},
					"garnish": map[string]any{"type": "string"},
				},
				"required": []string{"name", "ingredients"},
			},
		},
	},
	"required": []string{"recipes"},
}

type llmRecipeTextParser struct {
	log *logger.Logger
	llm ollama.Client
}

func NewRecipeTextParser(llm ollama.Client, baseLog *logger.Logger) RecipeTextParser {
	return &llmRecipeTextParser{log: baseLog.With("service", "RecipeTextParser"), llm: llm}
}

func (p *llmRecipeTextParser) Parse(ctx context.Context, text string) ([]ParsedRecipe, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text to parse")
	}
	user := "Extract every cocktail recipe from this page:\n\n" + text
	obj, err := p.llm.GenerateJSON(ctx, parserSystemPrompt, user, recipesSchema)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Recipes []ParsedRecipe `json:"recipes"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode parsed recipes: %w", err)
	}

	out := make([]ParsedRecipe, 0, len(payload.Recipes))
	for i, r := range payload.Recipes {
		if strings.TrimSpace(r.Name) == "" {
			p.log.Warn("Dropping parsed recipe without name", "index", i)
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no recipes found in page text")
	}
	return out, nil
}
