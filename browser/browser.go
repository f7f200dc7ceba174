package browser

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/nexus-hq/nexus/types"
)

// Page is the surface a driver uses to operate a vendor portal. The engine
// never inspects pages itself; it hands a Page to the active driver and takes
// it back at teardown. Implementations wrap a real automation runtime; tests
// use MockPage.
type Page interface {
	// Goto navigates to the given URL and waits for the page to settle.
	Goto(ctx context.Context, url string) error

	// Fill types a value into the element matched by the selector,
	// clearing any existing content first.
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the element matched by the selector.
	Click(ctx context.Context, selector string) error

	// SelectOption chooses an option in a <select> element by visible label.
	SelectOption(ctx context.Context, selector, label string) error

	// Options returns the visible labels of a <select> element's options.
	Options(ctx context.Context, selector string) ([]string, error)

	// Visible reports whether the element matched by the selector is
	// currently rendered and visible.
	Visible(ctx context.Context, selector string) (bool, error)

	// BodyText returns the rendered text content of the page body.
	BodyText(ctx context.Context) (string, error)

	// URL returns the page's current address.
	URL(ctx context.Context) (string, error)

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close shuts the page and its browser window.
	Close(ctx context.Context) error
}

// Runtime launches fresh automated browser sessions. Each vendor gets its own
// cold-started Page; sessions are never shared between vendors.
type Runtime interface {
	// Launch starts a new browser session and returns its page.
	Launch(ctx context.Context) (Page, error)

	// Health reports whether the runtime is installed and usable.
	Health() types.HealthStatus
}

// Preflight verifies that the browser automation binary is installed in the
// system PATH. The orchestrator calls this once before the first vendor; a
// missing runtime fails the whole run without launching anything.
func Preflight(binary string) types.HealthStatus {
	if binary == "" {
		return types.NewUnhealthyStatus("browser runtime binary name cannot be empty", nil)
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("browser runtime '%s' not found in PATH; install it before running provisioning", binary),
			map[string]any{
				"binary": binary,
				"error":  err.Error(),
			},
		)
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("browser runtime '%s' found at %s", binary, path),
	)
}
