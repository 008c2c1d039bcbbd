// Package normalize provides LLM-based normalization of Brazilian free-text
// delivery addresses into a fixed structured field set.
package normalize

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client normalizes one raw address per call. Any failure (transport, auth,
// malformed output) is returned as an error; callers degrade to pattern-only
// extraction, they never fail the row.
type Client interface {
	Normalize(ctx context.Context, req Request) (*Result, error)
	Model() string
}

// Request carries the raw address text plus spreadsheet hints.
type Request struct {
	Address      string
	Neighborhood string
	City         string
	PostalCode   string
}

// Fields is the structured field set the model is asked to return. All
// fields are plain strings; absent values are empty, never null.
type Fields struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Block        string `json:"block"`
	Lot          string `json:"lot"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Notes        string `json:"notes"`
}

// Result is a parsed normalization response.
type Result struct {
	Fields Fields
	Raw    string // raw model text, kept for diagnostics
}

const promptTemplate = `Você é um sistema de normalização de endereços do Brasil (Goiânia/GO e Aparecida de Goiânia/GO) para logística.
Retorne SOMENTE um objeto JSON válido. Se um campo não existir, use "".

Endereço bruto: %q
Bairro/Setor: %q
Cidade: %q
CEP: %q

Objetivo:
- street: somente o nome da via (ex: "Rua JCA1", "Avenida Central")
- number: apenas o número (se S/N, deixe "" e descreva em notes)
- block: apenas o valor da quadra (ex: "3" e não "03")
- lot: apenas o valor do lote (ex: "27" e não "027")
- neighborhood, city, state="GO", postal_code
- notes: EXTRAIA e PADRONIZE complementos em uma linha curta.

JSON:
{"street":"","number":"","block":"","lot":"","neighborhood":"","city":"","state":"GO","postal_code":"","notes":""}`

type client struct {
	sdk       sdk.Client
	model     string
	maxTokens int64
}

// Option configures the client.
type Option func(*client)

// WithMaxTokens overrides the response token budget.
func WithMaxTokens(n int64) Option {
	return func(c *client) {
		c.maxTokens = n
	}
}

// NewClient creates a normalization client for the given API key and model.
func NewClient(apiKey, model string, opts ...Option) Client {
	c := &client{
		sdk:       sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 512,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Model() string {
	return c.model
}

func (c *client) Normalize(ctx context.Context, req Request) (*Result, error) {
	prompt := fmt.Sprintf(promptTemplate, req.Address, req.Neighborhood, req.City, req.PostalCode)

	msg, err := c.sdk.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(0.2),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "normalize: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	fields, err := ParseFields(text.String())
	if err != nil {
		return nil, err
	}

	return &Result{Fields: *fields, Raw: text.String()}, nil
}
