package perspective

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// emptyValue replaces empty attribute values so they still get a legend entry
const emptyValue = "(empty)"

// flexID accepts ids written as JSON strings or numbers
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

func toStrings(ids []flexID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// orderedAttributes decodes a flat JSON object keeping its key order
type orderedAttributes []models.Attribute

func (a *orderedAttributes) UnmarshalJSON(data []byte) error {
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
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("explicit_community must be an object")
	}

	var out orderedAttributes
	index := make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("explicit_community has a non-string key")
		}

		valueTok, err := dec.Token()
		if err != nil {
			return err
		}

		var value string
		switch v := valueTok.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		case bool:
			value = strconv.FormatBool(v)
		case nil:
			continue
		default:
			return fmt.Errorf("explicit_community value of %q must be a scalar", key)
		}
		if value == "" {
			value = emptyValue
		}

		// Repeated keys keep their first position and their last value
		if i, seen := index[key]; seen {
			out[i].Value = value
			continue
		}
		index[key] = len(out)
		out = append(out, models.Attribute{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}

type rawExplanation struct {
	Type string          `json:"explanation_type"`
	Data json.RawMessage `json:"explanation_data"`
}

type rawMedoidData struct {
	ID flexID `json:"id"`
}

type rawCommunity struct {
	ID           flexID           `json:"id"`
	Name         string           `json:"name"`
	Type         string           `json:"community-type"`
	Users        []flexID         `json:"users"`
	AnonUsers    []flexID         `json:"anonUsers"`
	Explanations []rawExplanation `json:"explanations"`
}

// medoid returns the id named by the community's medoid explanation
func (c rawCommunity) medoid() (string, error) {
	for _, exp := range c.Explanations {
		if exp.Type != "medoid" {
			continue
		}
		var data rawMedoidData
		if err := json.Unmarshal(exp.Data, &data); err != nil {
			return "", fmt.Errorf("community %s: medoid explanation: %w", c.ID, err)
		}
		return string(data.ID), nil
	}
	return "", nil
}

type rawUser struct {
	ID                flexID            `json:"id"`
	Label             string            `json:"label"`
	ImplicitCommunity *int              `json:"implicit_community"`
	CommunityNumber   *int              `json:"community_number"`
	Group             *int              `json:"group"`
	Explicit          orderedAttributes `json:"explicit_community"`
	IsAnonymous       bool              `json:"isAnonymous"`
	IsAnonGroup       bool              `json:"isAnonGroup"`
}

// community resolves the three names the community number is written under
func (u rawUser) community() *int {
	switch {
	case u.ImplicitCommunity != nil:
		return u.ImplicitCommunity
	case u.CommunityNumber != nil:
		return u.CommunityNumber
	default:
		return u.Group
	}
}

type rawEdge struct {
	ID         flexID   `json:"id"`
	From       flexID   `json:"from"`
	To         flexID   `json:"to"`
	U1         flexID   `json:"u1"`
	U2         flexID   `json:"u2"`
	Similarity *float64 `json:"similarity"`
	Value      *float64 `json:"value"`
}

type rawPerspective struct {
	ID          flexID         `json:"id"`
	Name        string         `json:"name"`
	Communities []rawCommunity `json:"communities"`
	Users       []rawUser      `json:"users"`
	Similarity  []rawEdge      `json:"similarity"`
	Edges       []rawEdge      `json:"edges"`
}
