package history

import (
	"context"

	"github.com/f3rmion/tabconv/internal/dispatch"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/sirupsen/logrus"
)

// Observer returns a dispatch observer that records every successful
// conversion in s. Failures are logged and otherwise ignored.
func Observer(s *Store, logger logrus.FieldLogger) func(dispatch.Result) {
	return func(r dispatch.Result) {
		if r.Err != nil {
			return
		}
		_, err := s.Record(context.Background(), Entry{
			Format: r.Format.String(),
			Mode:   string(r.Mode),
			Param:  r.Param,
			Input:  r.Input,
			Output: r.Output,
		})
		if err != nil {
			logging.LogError(logger, "recording history", err, logrus.Fields{
				"format": r.Format.String(),
			})
		}
	}
}
