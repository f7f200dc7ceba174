// Package directory defines the corporate identity directory interface the
// engine consumes and the adapter that turns raw directory attributes into
// a Subject. The concrete backend (its transport, authentication, and
// paging) lives outside the engine; everything here is backend-agnostic.
package directory
