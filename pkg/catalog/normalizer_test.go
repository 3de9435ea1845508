package catalog

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"catalog-assistant-be/internal/entity"
)

func mustRecord(t *testing.T, raw string) Record {
	t.Helper()
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return rec
}

func TestNormalizeFormation(t *testing.T) {
	n := NewNormalizer(PolicyReject)

	rec := mustRecord(t, `{
		"product_id": "123",
		"title": "Formation Drupal 10",
		"field_code": "DRU10",
		"body": "<p>Apprendre &amp; ma&icirc;triser Drupal.</p>",
		"field_duration2": "3",
		"field_hours": "21",
		"field_prerequisites": "<ul><li>Bases du web</li></ul>",
		"field_program": "Jour 1: installation",
		"field_public": "Développeurs",
		"field_theme": [{"name": "Informatique"}],
		"field_certification_included": "1"
	}`)

	doc, err := n.Normalize(rec, entity.KindFormation)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if doc.NaturalId != "123" {
		t.Errorf("NaturalId = %q, want 123", doc.NaturalId)
	}
	if doc.Kind != entity.KindFormation {
		t.Errorf("Kind = %q", doc.Kind)
	}
	if doc.Title != "Formation Drupal 10" {
		t.Errorf("Title = %q", doc.Title)
	}

	wantLines := []string{
		"Formation: Formation Drupal 10",
		"Code: DRU10",
		"Description: Apprendre & maîtriser Drupal.",
		"Durée: 3 jours (21 heures)",
		"Prérequis: Bases du web",
		"Programme: Jour 1: installation",
		"Public cible: Développeurs",
		"Secteur: Informatique",
	}
	for _, line := range wantLines {
		if !strings.Contains(doc.Text, line) {
			t.Errorf("Text missing line %q in:\n%s", line, doc.Text)
		}
	}

	if doc.Metadata["code"] != "DRU10" || doc.Metadata["theme"] != "Informatique" {
		t.Errorf("Metadata = %v", doc.Metadata)
	}
}

func TestNormalizeFormationTruncation(t *testing.T) {
	n := NewNormalizer(PolicySynthesize)

	long := strings.Repeat("é", 600)
	rec := mustRecord(t, `{"product_id": "1", "title": "T", "body": "`+long+`"}`)

	doc, err := n.Normalize(rec, entity.KindFormation)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	start := strings.Index(doc.Text, "Description: ")
	end := strings.Index(doc.Text, "\nDurée:")
	desc := doc.Text[start+len("Description: ") : end]

	if !strings.HasSuffix(desc, "...") {
		t.Fatalf("truncated description should end with ellipsis marker")
	}
	body := strings.TrimSuffix(desc, "...")
	if got := len([]rune(body)); got != 500 {
		t.Errorf("description truncated to %d runes, want 500", got)
	}
}

func TestNormalizeFormationShortFieldNotTruncated(t *testing.T) {
	n := NewNormalizer(PolicySynthesize)
	rec := mustRecord(t, `{"product_id": "1", "title": "T", "body": "court"}`)

	doc, err := n.Normalize(rec, entity.KindFormation)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if strings.Contains(doc.Text, "court...") {
		t.Errorf("short description must not get the ellipsis marker")
	}
}

func TestNormalizeSession(t *testing.T) {
	n := NewNormalizer(PolicyReject)

	rec := mustRecord(t, `{
		"variation_id": "456",
		"sku": "DRU10-PAR-0124",
		"title": "Session Drupal – 15 Janvier 2024",
		"product_title": "Formation Drupal 10",
		"field_ville": "Paris",
		"field_price_eur_number": "1490",
		"field_hours": "21",
		"field_certification_included": "1",
		"status": "1"
	}`)

	doc, err := n.Normalize(rec, entity.KindSession)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if doc.NaturalId != "456" {
		t.Errorf("NaturalId = %q, want 456", doc.NaturalId)
	}
	if doc.Kind != entity.KindSession {
		t.Errorf("Kind = %q", doc.Kind)
	}

	wantLines := []string{
		"Session: Session Drupal – 15 Janvier 2024",
		"Formation: Formation Drupal 10",
		"Lieu: Paris",
		"Prix: 1490€",
		"Durée: 21 heures",
		"Certification: Incluse",
		"Statut: Actif",
	}
	for _, line := range wantLines {
		if !strings.Contains(doc.Text, line) {
			t.Errorf("Text missing line %q in:\n%s", line, doc.Text)
		}
	}

	if doc.Metadata["location"] != "Paris" || doc.Metadata["sku"] != "DRU10-PAR-0124" {
		t.Errorf("Metadata = %v", doc.Metadata)
	}
}

func TestNormalizeSessionFlags(t *testing.T) {
	tests := []struct {
		name          string
		certification string
		status        string
		wantCert      string
		wantStatus    string
	}{
		{"included and active", `"1"`, `"1"`, "Certification: Incluse", "Statut: Actif"},
		{"excluded and inactive", `"0"`, `"0"`, "Certification: Non incluse", "Statut: Inactif"},
		{"missing flags", `null`, `null`, "Certification: Non incluse", "Statut: Inactif"},
		{"boolean true certification", `true`, `"1"`, "Certification: Incluse", "Statut: Actif"},
	}

	n := NewNormalizer(PolicySynthesize)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustRecord(t, `{
				"variation_id": "1",
				"field_certification_included": `+tt.certification+`,
				"status": `+tt.status+`
			}`)
			doc, err := n.Normalize(rec, entity.KindSession)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if !strings.Contains(doc.Text, tt.wantCert) {
				t.Errorf("Text missing %q", tt.wantCert)
			}
			if !strings.Contains(doc.Text, tt.wantStatus) {
				t.Errorf("Text missing %q", tt.wantStatus)
			}
		})
	}
}

func TestNormalizeSessionDefaultTitle(t *testing.T) {
	n := NewNormalizer(PolicySynthesize)
	rec := mustRecord(t, `{"variation_id": "9"}`)

	doc, err := n.Normalize(rec, entity.KindSession)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if doc.Title != "Session" {
		t.Errorf("Title = %q, want default Session", doc.Title)
	}
}

func TestNaturalIdPolicies(t *testing.T) {
	rec := mustRecord(t, `{"title": "no id here"}`)

	t.Run("reject", func(t *testing.T) {
		n := NewNormalizer(PolicyReject)
		_, err := n.Normalize(rec, entity.KindFormation)
		if !errors.Is(err, ErrMissingNaturalID) {
			t.Errorf("err = %v, want ErrMissingNaturalID", err)
		}
	})

	t.Run("synthesize", func(t *testing.T) {
		n := NewNormalizer(PolicySynthesize)
		doc, err := n.Normalize(rec, entity.KindFormation)
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if doc.NaturalId == "" {
			t.Error("synthesized NaturalId must not be empty")
		}

		doc2, err := n.Normalize(rec, entity.KindFormation)
		if err != nil {
			t.Fatal(err)
		}
		if doc.NaturalId == doc2.NaturalId {
			t.Error("synthesized ids must be unique per normalization")
		}
	})
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"a &amp; b", "a & b"},
		{"  <div> spaced </div>  ", "spaced"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := stripTags(tt.in); got != tt.want {
			t.Errorf("stripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
