// Package browser abstracts the automated browser the vendor drivers operate.
// The engine itself never touches page content; it launches a fresh session
// per vendor through Runtime, hands the Page to the driver, and probes the
// automation binary once per run with Preflight.
package browser
