package massimport

import (
	"fmt"
	"strings"

	"hse-backend/internal/records"
)

// Kind identifies an import type; it is also the URL segment of the import endpoint.
type Kind string

const (
	KindTrainings      Kind = "trainings"
	KindAptitudes      Kind = "aptitudes"
	KindSanctions      Kind = "sanctions"
	KindQualifications Kind = "qualifications"
	KindPPEIssuances   Kind = "ppe_issuances"
)

// FieldType drives validation of a raw cell.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldInt
)

// Field describes one canonical column of an import template.
type Field struct {
	Key      string
	Aliases  []string
	Position int
	Type     FieldType
	Required bool
	Enum     []string
	LabelFR  string
	LabelEN  string
}

// Label returns the report header for locale.
func (f Field) Label(locale string) string {
	if locale == "en" {
		return f.LabelEN
	}
	return f.LabelFR
}

func (f Field) allows(value string) bool {
	for _, v := range f.Enum {
		if v == value {
			return true
		}
	}
	return false
}

// Schema is the full description of an import kind.
type Schema struct {
	Kind             Kind
	RecordKind       records.Kind
	Fields           []Field
	HeaderRequired   []string
	RequiresDocument bool
	Namespace        string
	EventField       string
	EndField         string
	TypeField        string
	StatusField      string
	LabelField       string
}

// Field returns the field with the given canonical key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

const (
	fieldCIN = "cin"

	typeOther       = "autre"
	sanctionSuspend = "mise_a_pied"
	maxSuspendDays  = 365
)

func cinField() Field {
	return Field{
		Key:      fieldCIN,
		Aliases:  []string{"n_cin", "numero_cin", "cin_number", "identifiant"},
		Position: 0,
		Type:     FieldText,
		Required: true,
		LabelFR:  "CIN",
		LabelEN:  "CIN",
	}
}

var schemas = map[Kind]Schema{
	KindTrainings: {
		Kind:       KindTrainings,
		RecordKind: records.KindTraining,
		Fields: []Field{
			cinField(),
			{
				Key: "type_formation", Aliases: []string{"training_type", "type"}, Position: 1,
				Type: FieldEnum, Required: true,
				Enum: []string{
					"formation_epi", "travail_en_hauteur", "secourisme", "lutte_incendie",
					"induction_hse", "espace_confine", "consignation", typeOther,
				},
				LabelFR: "Type de formation", LabelEN: "Training type",
			},
			{
				Key: "date_formation", Aliases: []string{"training_date"}, Position: 2,
				Type: FieldDate, Required: true,
				LabelFR: "Date de formation", LabelEN: "Training date",
			},
			{
				Key: "date_expiration", Aliases: []string{"expiry_date", "expiration"}, Position: 3,
				Type:    FieldDate,
				LabelFR: "Date d'expiration", LabelEN: "Expiry date",
			},
			{
				Key: "libelle", Aliases: []string{"label", "intitule"}, Position: 4,
				Type:    FieldText,
				LabelFR: "Libellé", LabelEN: "Label",
			},
		},
		HeaderRequired:   []string{fieldCIN, "type_formation", "date_formation"},
		RequiresDocument: true,
		Namespace:        "worker_certificates/mass_trainings",
		EventField:       "date_formation",
		EndField:         "date_expiration",
		TypeField:        "type_formation",
		LabelField:       "libelle",
	},
	KindAptitudes: {
		Kind:       KindAptitudes,
		RecordKind: records.KindAptitude,
		Fields: []Field{
			cinField(),
			{
				Key: "aptitude", Aliases: []string{"aptitude_status", "statut"}, Position: 1,
				Type: FieldEnum, Required: true,
				Enum:    []string{"apte", "inapte"},
				LabelFR: "Aptitude", LabelEN: "Aptitude",
			},
			{
				Key: "exam_nature", Aliases: []string{"nature_examen", "nature"}, Position: 2,
				Type: FieldEnum, Required: true,
				Enum:    []string{"embauche", "periodique", "reprise", "occasionnel", "fin_contrat"},
				LabelFR: "Nature de l'examen", LabelEN: "Exam nature",
			},
			{
				Key: "exam_date", Aliases: []string{"date_examen"}, Position: 3,
				Type: FieldDate, Required: true,
				LabelFR: "Date de l'examen", LabelEN: "Exam date",
			},
			{
				Key: "next_exam_date", Aliases: []string{"date_prochain_examen", "prochain_examen"}, Position: 4,
				Type:    FieldDate,
				LabelFR: "Date du prochain examen", LabelEN: "Next exam date",
			},
		},
		HeaderRequired:   []string{fieldCIN, "aptitude", "exam_date"},
		RequiresDocument: true,
		Namespace:        "worker_medical/mass_aptitudes",
		EventField:       "exam_date",
		EndField:         "next_exam_date",
		TypeField:        "exam_nature",
		StatusField:      "aptitude",
	},
	KindSanctions: {
		Kind:       KindSanctions,
		RecordKind: records.KindSanction,
		Fields: []Field{
			cinField(),
			{
				Key: "sanction_type", Aliases: []string{"type_sanction", "type"}, Position: 1,
				Type: FieldEnum, Required: true,
				Enum:    []string{"avertissement", "blame", sanctionSuspend, "licenciement"},
				LabelFR: "Type de sanction", LabelEN: "Sanction type",
			},
			{
				Key: "sanction_date", Aliases: []string{"date_sanction"}, Position: 2,
				Type: FieldDate, Required: true,
				LabelFR: "Date de la sanction", LabelEN: "Sanction date",
			},
			{
				Key: "reason", Aliases: []string{"motif"}, Position: 3,
				Type: FieldText, Required: true,
				LabelFR: "Motif", LabelEN: "Reason",
			},
			{
				Key: "duration_days", Aliases: []string{"duree_jours", "duree", "nombre_jours"}, Position: 4,
				Type:    FieldInt,
				LabelFR: "Durée (jours)", LabelEN: "Duration (days)",
			},
		},
		HeaderRequired:   []string{fieldCIN, "sanction_type", "sanction_date"},
		RequiresDocument: true,
		Namespace:        "worker_sanctions/mass_imports",
		EventField:       "sanction_date",
		TypeField:        "sanction_type",
	},
	KindQualifications: {
		Kind:       KindQualifications,
		RecordKind: records.KindQualification,
		Fields: []Field{
			cinField(),
			{
				Key: "qualification_type", Aliases: []string{"type_habilitation", "type"}, Position: 1,
				Type: FieldEnum, Required: true,
				Enum: []string{
					"habilitation_electrique", "conduite_engins", "levage", "echafaudage",
					"travail_en_hauteur", typeOther,
				},
				LabelFR: "Type d'habilitation", LabelEN: "Qualification type",
			},
			{
				Key: "start_date", Aliases: []string{"date_debut", "date_obtention"}, Position: 2,
				Type: FieldDate, Required: true,
				LabelFR: "Date de début", LabelEN: "Start date",
			},
			{
				Key: "expiry_date", Aliases: []string{"date_expiration", "date_fin"}, Position: 3,
				Type:    FieldDate,
				LabelFR: "Date d'expiration", LabelEN: "Expiry date",
			},
			{
				Key: "libelle", Aliases: []string{"label", "intitule"}, Position: 4,
				Type:    FieldText,
				LabelFR: "Libellé", LabelEN: "Label",
			},
		},
		HeaderRequired:   []string{fieldCIN, "qualification_type", "start_date"},
		RequiresDocument: true,
		Namespace:        "worker_qualifications/mass_imports",
		EventField:       "start_date",
		EndField:         "expiry_date",
		TypeField:        "qualification_type",
		LabelField:       "libelle",
	},
	KindPPEIssuances: {
		Kind: KindPPEIssuances,
		Fields: []Field{
			cinField(),
			{
				Key: "ppe_name", Aliases: []string{"epi", "nom_epi", "article"}, Position: 1,
				Type: FieldText, Required: true,
				LabelFR: "EPI", LabelEN: "PPE item",
			},
			{
				Key: "quantity", Aliases: []string{"quantite", "qte"}, Position: 2,
				Type: FieldInt, Required: true,
				LabelFR: "Quantité", LabelEN: "Quantity",
			},
			{
				Key: "issue_date", Aliases: []string{"date_remise", "date_attribution"}, Position: 3,
				Type: FieldDate, Required: true,
				LabelFR: "Date de remise", LabelEN: "Issue date",
			},
		},
		HeaderRequired: []string{fieldCIN, "ppe_name", "quantity"},
		EventField:     "issue_date",
	},
}

// SchemaFor returns the schema of kind.
func SchemaFor(kind Kind) (Schema, error) {
	s, ok := schemas[Kind(strings.ToLower(strings.TrimSpace(string(kind))))]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// Kinds lists every supported import kind.
func Kinds() []Kind {
	return []Kind{KindTrainings, KindAptitudes, KindSanctions, KindQualifications, KindPPEIssuances}
}
