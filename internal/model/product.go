package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Product is one catalog entry as authored in the storefront data file.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	LongDescription string    `json:"longDescription"`
	Price           float64   `json:"price"`
	Image           string    `json:"image"`
	Category        string    `json:"category"`
	DataAIHint      string    `json:"dataAiHint"`
	Tags            []string  `json:"tags"`
	Sentiment       Sentiment `json:"sentiment"`
}

// Sentiment holds review scores. Positive and Negative are not required to sum to 100.
type Sentiment struct {
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Aspects  Aspects `json:"aspects"`
}

// Aspect is a single named score inside Aspects.
type Aspect struct {
	Name  string
	Score int
}

// Aspects maps an aspect name to its score. The key set differs per product,
// so it is kept as an ordered list instead of a struct.
type Aspects []Aspect

// Get returns the score for name.
func (a Aspects) Get(name string) (int, bool) {
	for _, asp := range a {
		if asp.Name == name {
			return asp.Score, true
		}
	}
	return 0, false
}

// Set updates name in place or appends it.
func (a *Aspects) Set(name string, score int) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Score = score
			return
		}
	}
	*a = append(*a, Aspect{Name: name, Score: score})
}

// Map copies the aspects into a plain map.
func (a Aspects) Map() map[string]int {
	m := make(map[string]int, len(a))
	for _, asp := range a {
		m[asp.Name] = asp.Score
	}
	return m
}

// MarshalJSON writes the aspects as a JSON object in insertion order.
func (a Aspects) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, asp := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(asp.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", asp.Score)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order of the document.
func (a *Aspects) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("aspects: expected object, got %v", tok)
	}

	out := Aspects{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("aspects: unexpected key %v", keyTok)
		}
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("aspects: value of %q: %w", key, err)
		}
		v, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return fmt.Errorf("aspects: value of %q: %w", key, err)
			}
			v = int64(f)
		}
		out.Set(key, int(v))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
