package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// FFProbe returns a prober that asks ffprobe for the container duration.
func FFProbe(timeout time.Duration) DurationProber {
	return func(ctx context.Context, path string) (float64, error) {
		limit := timeout
		if deadline, ok := ctx.Deadline(); ok {
			if left := time.Until(deadline); left < limit {
				limit = left
			}
		}

		out, err := ffmpeg.ProbeWithTimeout(path, limit, ffmpeg.KwArgs{})
		if err != nil {
			return 0, fmt.Errorf("ffprobe: %w", err)
		}
		return parseDuration(out)
	}
}

func parseDuration(probeJSON string) (float64, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(probeJSON), &out); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no duration")
	}

	d, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
	}
	return d, nil
}
