// Package registry holds the static list of configured assistants and lookup
// over it. The list is immutable after construction.
package registry

import (
	"fmt"
	"strings"

	"github.com/andrew/juris-chat/pkg/models"
)

// Registry is the set of assistants available to the user.
type Registry struct {
	assistants []models.Assistant
	byID       map[string]models.Assistant
}

// New builds a registry from the given assistants. Duplicate ids are
// rejected since conversation histories are keyed by assistant id.
func New(assistants []models.Assistant) (*Registry, error) {
	byID := make(map[string]models.Assistant, len(assistants))
	for _, a := range assistants {
		if a.ID == "" {
			return nil, fmt.Errorf("assistant %q has no id", a.Name)
		}
		if _, dup := byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate assistant id %q", a.ID)
		}
		byID[a.ID] = a
	}
	return &Registry{assistants: assistants, byID: byID}, nil
}

// List returns the assistants in configuration order.
func (r *Registry) List() []models.Assistant {
	out := make([]models.Assistant, len(r.assistants))
	copy(out, r.assistants)
	return out
}

// Get looks an assistant up by id.
func (r *Registry) Get(id string) (models.Assistant, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Resolve accepts either an assistant id or a display name (case-insensitive)
// and returns the matching assistant. Used by the CLI so users can type a
// name instead of an opaque id.
func (r *Registry) Resolve(key string) (models.Assistant, bool) {
	if a, ok := r.byID[key]; ok {
		return a, true
	}
	for _, a := range r.assistants {
		if strings.EqualFold(a.Name, key) {
			return a, true
		}
	}
	return models.Assistant{}, false
}

// Default returns the built-in assistant list. A config file may override it.
func Default() []models.Assistant {
	return []models.Assistant{
		{
			ID:          "asst_0wPD5C2HonvPEUqpIivM0qAF",
			Name:        "Google Ads",
			Description: "Especialista em campanhas do Google Ads",
			Color:       "#4285F4",
		},
		{
			ID:          "asst_4Nvgvl8JiGoJAXRm8KGqox4g",
			Name:        "Otimização de Ads",
			Description: "Especialista em otimização de campanhas",
			Color:       "#34A853",
		},
		{
			ID:          "asst_J7kTSsJMZE1W7nsmJmd2qlJ6",
			Name:        "Landing Pages",
			Description: "Especialista em Landing Pages jurídicas",
			Color:       "#2196F3",
		},
		{
			ID:          "asst_W8phQA2MfckKTBjKnlgixXhC",
			Name:        "Docs. Extrajudiciais",
			Description: "Especialista em documentação extrajudicial",
			Color:       "#9C27B0",
		},
		{
			ID:          "asst_WlKBrEHp3W4GMQcVpKNL7tyj",
			Name:        "Docs. Judiciais",
			Description: "Especialista em documentação judicial",
			Color:       "#E91E63",
		},
		{
			ID:          "asst_Yp427CXcGwPXhyKX3jXesf7I",
			Name:        "Docs. Administrativos",
			Description: "Especialista em documentos administrativos",
			Color:       "#FF9800",
		},
		{
			ID:          "asst_iYGgTjDbC1N8DIbOOVEqXgti",
			Name:        "Funil WhatsApp",
			Description: "Especialista em funil de vendas via WhatsApp",
			Color:       "#25D366",
		},
		{
			ID:          "asst_h4tt7MbzvIFfhl6mZej3teFJ",
			Name:        "Comunicação Jurídica",
			Description: "Estratégia de Comunicação de Produto Jurídico",
			Color:       "#673AB7",
		},
		{
			ID:          "asst_9H6q62hM2O2ycNOxlApuuJlv",
			Name:        "Plano Jurídico",
			Description: "Especialista em Plano de Produto Jurídico",
			Color:       "#3F51B5",
		},
	}
}
