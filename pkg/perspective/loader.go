// Package perspective decodes and validates perspective files before they reach a session.
package perspective

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/perspective-viz/pkg/models"
)

var validate = validator.New()

// ValidationError lists every structural problem found in a perspective file
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid perspective: " + strings.Join(e.Problems, "; ")
}

type communityInput struct {
	ID        string   `validate:"required"`
	Name      string
	Type      models.CommunityType
	Users     []string `validate:"dive,required"`
	AnonUsers []string `validate:"dive,required"`
	Medoid    string
}

type userInput struct {
	ID          string `validate:"required"`
	Label       string
	Community   *int `validate:"required,gte=0"`
	Attributes  []models.Attribute
	IsAnonymous bool
	IsAnonGroup bool
}

type edgeInput struct {
	ID         string   `validate:"required"`
	From       string   `validate:"required"`
	To         string   `validate:"required"`
	Similarity *float64 `validate:"required,gte=0,lte=1"`
}

type perspectiveInput struct {
	ID          string
	Name        string
	Communities []communityInput `validate:"required,min=1,dive"`
	Users       []userInput      `validate:"dive"`
	Edges       []edgeInput      `validate:"dive"`
}

// LoadFile reads and validates a perspective file
func LoadFile(path string) (*models.Perspective, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open perspective file: %w", err)
	}
	defer f.Close()

	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return p, nil
}

// Load reads and validates a perspective from r
func Load(r io.Reader) (*models.Perspective, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read perspective: %w", err)
	}
	return Decode(data)
}

// Decode parses perspective JSON, validates its structure and cross references,
// and builds the model the session consumes
func Decode(data []byte) (*models.Perspective, error) {
	var raw rawPerspective
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse perspective JSON: %w", err)
	}

	input, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(input); err != nil {
		return nil, formatValidationError(err)
	}

	if problems := crossCheck(input); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	p := build(input)

	log.Debug().
		Str("perspective_id", p.ID).
		Int("users", len(p.Nodes)).
		Int("communities", len(p.Communities)).
		Int("edges", len(p.Edges)).
		Msg("Perspective decoded")

	return p, nil
}

func normalize(raw rawPerspective) (perspectiveInput, error) {
	input := perspectiveInput{
		ID:   string(raw.ID),
		Name: raw.Name,
	}
	if input.Name == "" {
		input.Name = input.ID
	}

	for _, rc := range raw.Communities {
		medoid, err := rc.medoid()
		if err != nil {
			return input, err
		}

		ctype := models.CommunityImplicit
		if rc.Type == "inexistent" {
			ctype = models.CommunityInexistent
		}

		input.Communities = append(input.Communities, communityInput{
			ID:        string(rc.ID),
			Name:      rc.Name,
			Type:      ctype,
			Users:     toStrings(rc.Users),
			AnonUsers: toStrings(rc.AnonUsers),
			Medoid:    medoid,
		})
	}

	for _, ru := range raw.Users {
		label := ru.Label
		if label == "" {
			label = string(ru.ID)
		}
		input.Users = append(input.Users, userInput{
			ID:          string(ru.ID),
			Label:       label,
			Community:   ru.community(),
			Attributes:  ru.Explicit,
			IsAnonymous: ru.IsAnonymous,
			IsAnonGroup: ru.IsAnonGroup,
		})
	}

	edges := append(append([]rawEdge(nil), raw.Similarity...), raw.Edges...)

	// Explicit ids win; a missing id falls back to the edge's position in the file,
	// suffixed when that position is already some other edge's id
	taken := make(map[string]bool, len(edges))
	for _, re := range edges {
		if re.ID != "" {
			taken[string(re.ID)] = true
		}
	}

	for i, re := range edges {
		from, to := string(re.From), string(re.To)
		if from == "" {
			from = string(re.U1)
		}
		if to == "" {
			to = string(re.U2)
		}
		if from != "" && from == to {
			log.Debug().Str("node_id", from).Msg("Self-loop edge dropped")
			continue
		}

		similarity := re.Similarity
		if similarity == nil {
			similarity = re.Value
		}

		id := string(re.ID)
		if id == "" {
			id = fallbackEdgeID(i, taken)
		}

		input.Edges = append(input.Edges, edgeInput{
			ID:         id,
			From:       from,
			To:         to,
			Similarity: similarity,
		})
	}

	return input, nil
}

func fallbackEdgeID(position int, taken map[string]bool) string {
	id := strconv.Itoa(position)
	for n := 1; taken[id]; n++ {
		id = fmt.Sprintf("%d.%d", position, n)
	}
	taken[id] = true
	return id
}

// crossCheck verifies references between users, communities and edges
func crossCheck(input perspectiveInput) []string {
	var problems []string

	users := make(map[string]bool, len(input.Users))
	for _, u := range input.Users {
		if users[u.ID] {
			problems = append(problems, fmt.Sprintf("user %s is duplicated", u.ID))
		}
		users[u.ID] = true

		if *u.Community >= len(input.Communities) {
			problems = append(problems, fmt.Sprintf("user %s references community %d of %d", u.ID, *u.Community, len(input.Communities)))
		}
	}

	edges := make(map[string]bool, len(input.Edges))
	for _, e := range input.Edges {
		if edges[e.ID] {
			problems = append(problems, fmt.Sprintf("edge %s is duplicated", e.ID))
		}
		edges[e.ID] = true

		if !users[e.From] {
			problems = append(problems, fmt.Sprintf("edge %s starts at unknown user %s", e.ID, e.From))
		}
		if !users[e.To] {
			problems = append(problems, fmt.Sprintf("edge %s ends at unknown user %s", e.ID, e.To))
		}
	}

	return problems
}

func build(input perspectiveInput) *models.Perspective {
	p := &models.Perspective{
		ID:          input.ID,
		Name:        input.Name,
		Nodes:       make([]*models.Node, 0, len(input.Users)),
		Communities: make([]*models.Community, 0, len(input.Communities)),
		Edges:       make([]models.Edge, 0, len(input.Edges)),
	}

	anonymous := make(map[string]bool)
	medoids := make(map[string]int)
	for i, c := range input.Communities {
		for _, id := range c.AnonUsers {
			anonymous[id] = true
		}
		if c.Medoid != "" {
			medoids[c.Medoid] = i
		}
	}

	byID := make(map[string]*models.Node, len(input.Users))
	for _, u := range input.Users {
		node := &models.Node{
			ID:          u.ID,
			Label:       u.Label,
			Community:   *u.Community,
			Attributes:  u.Attributes,
			IsAnonymous: u.IsAnonymous || anonymous[u.ID],
			IsAnonGroup: u.IsAnonGroup,
		}
		if c, ok := medoids[u.ID]; ok && c == node.Community {
			node.IsMedoid = true
		}
		byID[u.ID] = node
		p.Nodes = append(p.Nodes, node)
	}

	for i, c := range input.Communities {
		members := make([]string, 0, len(c.Users))
		for _, id := range c.Users {
			if _, ok := byID[id]; !ok {
				log.Debug().Str("community_id", c.ID).Str("user_id", id).Msg("Community member without user record dropped")
				continue
			}
			members = append(members, id)
		}

		p.Communities = append(p.Communities, &models.Community{
			Index:   i,
			ID:      c.ID,
			Name:    c.Name,
			Type:    c.Type,
			Members: members,
		})
	}

	for _, e := range input.Edges {
		p.Edges = append(p.Edges, models.Edge{
			ID:         e.ID,
			From:       e.From,
			To:         e.To,
			Similarity: *e.Similarity,
		})
	}

	return p
}

// formatValidationError turns validator field errors into one ValidationError
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	problems := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		problems = append(problems, formatFieldError(e))
	}
	return &ValidationError{Problems: problems}
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
