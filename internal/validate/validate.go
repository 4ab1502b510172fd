// Package validate checks intake submissions against a package's
// requirement set. Every function is pure: no I/O, no clock, same inputs
// produce the same result. The HTTP layer runs these authoritatively on
// every submission; any client-side pre-check is advisory only.
package validate

import (
	"fmt"
	"strings"

	"github.com/vdmx/riskintel/internal/catalog"
)

// FormResult reports a form check. MissingFields carries the labels of
// every required field without a value, in registry order, so the caller
// can surface all gaps at once.
type FormResult struct {
	Valid         bool
	MissingFields []string
}

func (r FormResult) Message() string {
	if r.Valid {
		return ""
	}
	return "Faltan campos obligatorios: " + strings.Join(r.MissingFields, ", ")
}

// DocResult reports a document check. Code distinguishes the failure class
// so integrity violations can be logged as security events.
type DocResult struct {
	Valid   bool
	Code    string
	Message string
}

const (
	CodeUnexpectedUpload = "unexpected_upload"
	CodeSecurityBlock    = "security_block"
	CodeMissingDocuments = "missing_documents"
)

// Form checks that every required field has a non-empty value. Evaluation
// follows registry field order and collects all gaps instead of failing fast.
func Form(reqs catalog.RequirementSet, values map[string]any) FormResult {
	var missing []string
	for _, f := range reqs.Fields {
		if f.Required && isEmpty(values[f.Name]) {
			missing = append(missing, f.Label)
		}
	}
	return FormResult{Valid: len(missing) == 0, MissingFields: missing}
}

// Documents checks an uploaded file set, keyed by document id. Rules run in
// a fixed order and the first failing rule wins:
//
//  1. a skip-upload package must not receive any file at all;
//  2. the extra-required table (package id -> document ids) makes the named
//     documents mandatory regardless of their own Required flag;
//  3. every DocumentSpec with Required=true must be present.
func Documents(reqs catalog.RequirementSet, extraRequired []string, files map[string]string) DocResult {
	if reqs.SkipUpload {
		if len(files) > 0 {
			return DocResult{
				Code:    CodeUnexpectedUpload,
				Message: "Error de integridad: Este paquete no admite carga de documentos.",
			}
		}
		return DocResult{Valid: true}
	}

	if missing := missingFrom(reqs, extraRequired, files); len(missing) > 0 {
		return DocResult{
			Code:    CodeSecurityBlock,
			Message: fmt.Sprintf("Bloqueo de seguridad: Faltan documentos críticos: %s", strings.Join(missing, ", ")),
		}
	}

	var missing []string
	for _, d := range reqs.Documents {
		if d.Required {
			if _, ok := files[d.ID]; !ok {
				missing = append(missing, d.Name)
			}
		}
	}
	if len(missing) > 0 {
		return DocResult{
			Code:    CodeMissingDocuments,
			Message: "Faltan documentos obligatorios: " + strings.Join(missing, ", "),
		}
	}

	return DocResult{Valid: true}
}

// missingFrom resolves the extra-required ids to their declared names and
// returns the ones absent from files.
func missingFrom(reqs catalog.RequirementSet, extraRequired []string, files map[string]string) []string {
	if len(extraRequired) == 0 {
		return nil
	}
	names := make(map[string]string, len(reqs.Documents))
	for _, d := range reqs.Documents {
		names[d.ID] = d.Name
	}
	var missing []string
	for _, id := range extraRequired {
		if _, ok := files[id]; ok {
			continue
		}
		if name, ok := names[id]; ok {
			missing = append(missing, name)
		} else {
			missing = append(missing, id)
		}
	}
	return missing
}

func isEmpty(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	default:
		return false
	}
}
