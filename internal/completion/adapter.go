package completion

import (
	"context"
	"net/http"

	"github.com/kannou1/PFE/internal/types"
)

// Request is the provider-neutral completion request.
type Request struct {
	Model       string
	Messages    []types.Message
	Temperature float64
	MaxTokens   int
}

// Adapter translates a Request into one provider's HTTP API and extracts the
// reply text from its response.
type Adapter interface {
	Name() string
	BuildRequest(ctx context.Context, req Request) (*http.Request, error)
	// ParseResponse reads a 2xx body. It returns ErrResponseShape when the
	// body has no reply text.
	ParseResponse(body []byte) (string, error)
}
