package catalog

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"catalog-assistant-be/internal/entity"

	"github.com/google/uuid"
)

// IDFallbackPolicy controls what happens when a record carries no natural id.
// Synthesizing keeps the upstream's permissive behavior at the cost of
// duplicated rows across re-indexing runs; rejecting skips the record.
type IDFallbackPolicy string

const (
	PolicySynthesize IDFallbackPolicy = "synthesize"
	PolicyReject     IDFallbackPolicy = "reject"
)

var ErrMissingNaturalID = errors.New("record has no natural id")

// Truncation budgets for the long free-text formation fields.
const (
	descriptionBudget   = 500
	prerequisitesBudget = 300
	programBudget       = 500
	audienceBudget      = 300
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Normalizer renders raw catalog records into flattened text documents.
type Normalizer struct {
	policy IDFallbackPolicy
}

func NewNormalizer(policy IDFallbackPolicy) *Normalizer {
	if policy != PolicyReject {
		policy = PolicySynthesize
	}
	return &Normalizer{policy: policy}
}

// Normalize extracts the canonical field set of a record and renders the
// kind's text template. Missing fields resolve to empty segments; only a
// missing natural id under the reject policy produces an error.
func (n *Normalizer) Normalize(rec Record, kind entity.RecordKind) (*entity.Document, error) {
	switch kind {
	case entity.KindSession:
		return n.normalizeSession(rec)
	default:
		return n.normalizeFormation(rec)
	}
}

func (n *Normalizer) normalizeFormation(rec Record) (*entity.Document, error) {
	naturalId, err := n.naturalId(rec.String("product_id"))
	if err != nil {
		return nil, err
	}

	title := rec.String("title")
	description := truncate(stripTags(rec.String("body")), descriptionBudget)
	prerequisites := truncate(stripTags(rec.String("field_prerequisites")), prerequisitesBudget)
	program := truncate(stripTags(rec.String("field_program")), programBudget)
	audience := truncate(stripTags(rec.String("field_public")), audienceBudget)
	theme := rec.Nested("field_theme", "name")

	text := fmt.Sprintf(
		"Formation: %s\nCode: %s\nDescription: %s\nDurée: %s jours (%s heures)\nPrérequis: %s\nProgramme: %s\nPublic cible: %s\nSecteur: %s",
		title,
		rec.String("field_code"),
		description,
		rec.String("field_duration2"),
		rec.String("field_hours"),
		prerequisites,
		program,
		audience,
		theme,
	)

	return &entity.Document{
		NaturalId: naturalId,
		Kind:      entity.KindFormation,
		Title:     title,
		Text:      text,
		Metadata: map[string]string{
			"code":          rec.String("field_code"),
			"duration":      rec.String("field_duration2"),
			"hours":         rec.String("field_hours"),
			"theme":         theme,
			"certification": rec.String("field_certification_included"),
		},
	}, nil
}

func (n *Normalizer) normalizeSession(rec Record) (*entity.Document, error) {
	naturalId, err := n.naturalId(rec.String("variation_id"))
	if err != nil {
		return nil, err
	}

	title := rec.String("title")
	if title == "" {
		title = "Session"
	}

	certification := "Non incluse"
	if isTruthy(rec.String("field_certification_included")) {
		certification = "Incluse"
	}
	status := "Inactif"
	if rec.String("status") == "1" {
		status = "Actif"
	}

	text := fmt.Sprintf(
		"Session: %s\nFormation: %s\nLieu: %s\nPrix: %s€\nDurée: %s heures\nCertification: %s\nStatut: %s",
		title,
		rec.String("product_title"),
		rec.String("field_ville"),
		rec.String("field_price_eur_number"),
		rec.String("field_hours"),
		certification,
		status,
	)

	return &entity.Document{
		NaturalId: naturalId,
		Kind:      entity.KindSession,
		Title:     title,
		Text:      text,
		Metadata: map[string]string{
			"sku":           rec.String("sku"),
			"product_title": rec.String("product_title"),
			"location":      rec.String("field_ville"),
			"price_eur":     rec.String("field_price_eur_number"),
			"hours":         rec.String("field_hours"),
			"certification": rec.String("field_certification_included"),
			"status":        rec.String("status"),
		},
	}, nil
}

func (n *Normalizer) naturalId(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if n.policy == PolicyReject {
		return "", ErrMissingNaturalID
	}
	return uuid.NewString(), nil
}

// truncate bounds s to budget runes, appending a marker when content was cut.
func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "..."
}

func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}
