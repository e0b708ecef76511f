package compiler

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/ezz-ae/entrestate-engine/pkg/models"
)

// screenSpecValues checks every string value in an LLM-derived spec for
// SQL injection patterns. Rule-based and golden-path specs never carry
// attacker-shaped strings (values come from the registry or numeric
// normalization), but LLM output is untrusted text and gets screened
// before it can reach the query builder. Only strings are checked;
// numbers and booleans cannot carry injection payloads.
func screenSpecValues(spec models.TableSpec) error {
	for _, f := range spec.Filters {
		switch v := f.Value.(type) {
		case string:
			if isSQLi, fingerprint := libinjection.IsSQLi(v); isSQLi {
				return fmt.Errorf("injection pattern in filter %s (fingerprint %s)", f.Field, fingerprint)
			}
		case []string:
			for _, s := range v {
				if isSQLi, fingerprint := libinjection.IsSQLi(s); isSQLi {
					return fmt.Errorf("injection pattern in filter %s (fingerprint %s)", f.Field, fingerprint)
				}
			}
		}
	}

	for _, area := range spec.Scope.Areas {
		if isSQLi, fingerprint := libinjection.IsSQLi(area); isSQLi {
			return fmt.Errorf("injection pattern in scope area (fingerprint %s)", fingerprint)
		}
	}
	for _, city := range spec.Scope.Cities {
		if isSQLi, fingerprint := libinjection.IsSQLi(city); isSQLi {
			return fmt.Errorf("injection pattern in scope city (fingerprint %s)", fingerprint)
		}
	}

	return nil
}
