// Package infer contains the pure inference helpers that bridge free-text
// directory attributes and vendor form values: cost-center extraction from
// office locations, branch dropdown matching, job-title-to-role suggestion,
// and permission tier derivation.
//
// Every helper is deterministic given its inputs. The role suggester may
// optionally consult a configured LLM; the keyword-scoring path is the
// normative behavior and is always available.
package infer
