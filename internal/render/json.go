package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

func writeJSON(deck models.SlideDeck, path string) error {
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadDeck loads a deck written by the JSON renderer.
func ReadDeck(path string) (models.SlideDeck, error) {
	var deck models.SlideDeck
	data, err := os.ReadFile(path)
	if err != nil {
		return deck, err
	}
	if err := json.Unmarshal(data, &deck); err != nil {
		return deck, fmt.Errorf("decode %s: %w", path, err)
	}
	return deck, nil
}
