package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// FFmpegRecorder pipes the output stream as raw RGBA into an ffmpeg process
// encoding an H.264 file. The process starts on the first frame, whose size
// fixes the video size.
type FFmpegRecorder struct {
	Path    string
	FPS     int
	Encoder string // libx264, h264_nvenc, h264_videotoolbox
	Quality int

	ctx    context.Context
	scaler *Scaler
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    bytes.Buffer
	size   image.Point
	failed bool
}

func NewFFmpegRecorder(ctx context.Context, path string, fps int, encoder string, quality int) *FFmpegRecorder {
	if encoder == "" {
		encoder = "libx264"
	}
	if quality <= 0 {
		quality = defaultQuality(encoder)
	}
	return &FFmpegRecorder{
		Path:    path,
		FPS:     fps,
		Encoder: encoder,
		Quality: quality,
		ctx:     ctx,
		scaler:  NewScaler(),
	}
}

func defaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

func (r *FFmpegRecorder) Present(frame image.Image, crop image.Rectangle, out image.Point) error {
	if r.failed {
		return nil
	}
	if r.cmd == nil {
		if err := r.start(out); err != nil {
			r.failed = true
			return err
		}
	}
	if out != r.size {
		return fmt.Errorf("recorder: output size changed from %v to %v", r.size, out)
	}

	img := r.scaler.Scale(frame, crop, out)
	defer r.scaler.Release(img)

	if _, err := r.stdin.Write(img.Pix); err != nil {
		r.failed = true
		return fmt.Errorf("recorder write: %w", err)
	}
	return nil
}

func (r *FFmpegRecorder) start(out image.Point) error {
	cmd := exec.CommandContext(r.ctx, "ffmpeg", r.buildArgs(out)...)
	cmd.Stdout = &r.log
	cmd.Stderr = &r.log

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	r.size = out
	r.cmd = cmd
	r.stdin = stdin
	return nil
}

func (r *FFmpegRecorder) buildArgs(out image.Point) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", out.X, out.Y),
		"-framerate", fmt.Sprintf("%d", r.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", r.Encoder,
	}

	switch r.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", r.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", r.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", r.Quality), "-preset", "veryfast")
	}

	return append(args, r.Path)
}

// Close ends the stream and waits for ffmpeg to finish the file
func (r *FFmpegRecorder) Close() error {
	if r.cmd == nil || r.stdin == nil {
		return nil
	}
	closeErr := r.stdin.Close()
	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, r.log.String())
	}
	if closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe) {
		return closeErr
	}
	return nil
}
