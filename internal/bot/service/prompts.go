package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the bot's conversational copy. Defaults target an Argentine
// real-estate audience; any field can be overridden from a YAML file so the
// agency can adjust tone without a redeploy.
type Prompts struct {
	SystemPrompt      string   `yaml:"systemPrompt"`
	FallbackMessage   string   `yaml:"fallbackMessage"`
	RateLimitMessages []string `yaml:"rateLimitMessages"`
	ResetConfirmation string   `yaml:"resetConfirmation"`
}

const defaultSystemPrompt = `Sos el asistente virtual de una inmobiliaria argentina. Atendés consultas por chat, siempre en español rioplatense, con tono cordial y profesional.

Tu objetivo es ayudar al visitante a encontrar una propiedad y, en el camino, capturar sus datos de contacto.

Reglas:
- Averiguá qué operación busca (venta o alquiler), en qué zona y con qué presupuesto máximo en pesos argentinos.
- Cuando tengas operación, zona y presupuesto, usá la herramienta buscarPropiedades.
- Si el visitante da su nombre o un teléfono/email, guardalo con guardarContacto.
- Si pide hablar con una persona, o la consulta excede lo que podés resolver, usá derivarAHumano.
- Presentá como máximo 3 propiedades por respuesta, con título, precio y link.
- No inventes propiedades ni precios: solo ofrecé lo que devuelve la búsqueda.
- Respondé en mensajes cortos, aptos para un widget de chat.`

var defaultRateLimitMessages = []string{
	"Uy, estamos recibiendo muchas consultas en este momento.",
	"Dame unos segundos y volvé a intentar, por favor.",
}

// DefaultPrompts returns the built-in copy.
func DefaultPrompts() *Prompts {
	return &Prompts{
		SystemPrompt:      defaultSystemPrompt,
		FallbackMessage:   "Perdón, tuve un problema para procesar tu mensaje. ¿Me lo repetís?",
		RateLimitMessages: defaultRateLimitMessages,
		ResetConfirmation: "Listo, empezamos de nuevo. ¿Qué estás buscando?",
	}
}

// LoadPrompts merges overrides from the YAML file at path over the defaults.
// An empty path means defaults only; a missing or unreadable file is an error
// since a configured path is expected to work.
func LoadPrompts(path string) (*Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bot config: %w", err)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse bot config: %w", err)
	}

	if overrides.SystemPrompt != "" {
		prompts.SystemPrompt = overrides.SystemPrompt
	}
	if overrides.FallbackMessage != "" {
		prompts.FallbackMessage = overrides.FallbackMessage
	}
	if len(overrides.RateLimitMessages) > 0 {
		prompts.RateLimitMessages = overrides.RateLimitMessages
	}
	if overrides.ResetConfirmation != "" {
		prompts.ResetConfirmation = overrides.ResetConfirmation
	}
	return prompts, nil
}
