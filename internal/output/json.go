package output

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/finpath/trajectory-engine/internal/domain"
)

// JSONFormatter emits the trajectory as indented JSON. Monetary fields
// serialize as integer cents.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(t *domain.Trajectory) ([]byte, error) {
	if t == nil {
		return nil, errors.New("cannot format nil trajectory")
	}
	return json.MarshalIndent(t, "", "  ")
}
