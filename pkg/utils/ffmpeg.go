package utils

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration 使用ffprobe读取视频时长（秒）
func ProbeDuration(videoPath string) (float64, error) {
	out, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, errors.WithMessage(err, "Failed to probe the video")
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out string) (float64, error) {
	var res probeResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		return 0, errors.WithMessage(err, "Failed to decode probe output")
	}
	if res.Format.Duration == "" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(res.Format.Duration, 64)
	if err != nil {
		return 0, errors.WithMessage(err, "Invalid duration in probe output")
	}
	return d, nil
}
