package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	// The device and the wire protocol address bytes with an int.
	if uint64(cfg.Device.Capacity) > math.MaxInt32 {
		return fmt.Errorf("device.capacity %d exceeds %d", cfg.Device.Capacity, math.MaxInt32)
	}
	if uint64(cfg.Device.ChunkSize) > math.MaxInt32 {
		return fmt.Errorf("device.chunk_size %d exceeds %d", cfg.Device.ChunkSize, math.MaxInt32)
	}

	if cfg.Metrics.Enabled && !cfg.API.Enabled {
		return errors.New("metrics.enabled requires api.enabled: metrics are served at /metrics on the API server")
	}
	return nil
}
