package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// Preflight checks that the Ollama server answers and reports which of the wanted models
// are not pulled yet. A name without a tag matches its ":latest" variant.
func Preflight(ctx context.Context, baseURL string, wanted []string) ([]string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	if err := client.Heartbeat(ctx); err != nil {
		return nil, fmt.Errorf("ollama heartbeat: %w", err)
	}

	list, err := client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	have := make(map[string]bool, len(list.Models))
	for _, m := range list.Models {
		have[m.Name] = true
		have[m.Model] = true
	}

	var missing []string
	for _, w := range wanted {
		if have[w] || (!strings.Contains(w, ":") && have[w+":latest"]) {
			continue
		}
		missing = append(missing, w)
	}
	return missing, nil
}
