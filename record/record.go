package record

import (
	"fmt"
	"io"
	"log"
	"runtime"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// numBuffers is the depth of the frame queue between the render loop and
// the encoder.
const numBuffers = 3

// Options configures a recording.
type Options struct {
	OutputFile string
	Size       int // edge length of the square RGBA8 frames
	FPS        int
	Codec      string // "h264" or "hevc"
	FFMPEGPath string
}

// Recorder streams raw RGBA frames to an ffmpeg process. Submit and Close
// must be called from the same goroutine.
type Recorder struct {
	frameSize int
	frames    chan []byte
	done      chan error
	closed    bool
	dropped   int
	logger    *log.Logger
}

// New starts ffmpeg and returns a Recorder feeding it.
func New(opts Options) (*Recorder, error) {
	if opts.OutputFile == "" {
		return nil, fmt.Errorf("no output file")
	}
	if opts.Size <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid recording geometry %dx%d at %d fps", opts.Size, opts.Size, opts.FPS)
	}
	return start(opts.Size, func(r io.Reader) error {
		return command(opts, r).Run()
	}), nil
}

// command builds the ffmpeg invocation for opts reading frames from r.
func command(opts Options, r io.Reader) *ffmpeg.Stream {
	inputArgs, outputArgs := getArgs(opts)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(r).ErrorToStdOut()
	if opts.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(opts.FFMPEGPath)
	}
	return cmd
}

func getArgs(opts Options) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", opts.Size, opts.Size),
		"r":       fmt.Sprintf("%d", opts.FPS),
	}
	outputArgs = ffmpeg.KwArgs{
		// GL rows arrive bottom-up.
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
		"c:v":     videoEncoder(opts.Codec, runtime.GOOS),
	}
	if opts.Codec == "hevc" && len(opts.OutputFile) > 4 && opts.OutputFile[len(opts.OutputFile)-4:] == ".mp4" {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// videoEncoder picks an encoder for the platform, preferring hardware where
// it is reliably present.
func videoEncoder(codec, goos string) string {
	switch codec {
	case "hevc":
		if goos == "darwin" {
			return "hevc_videotoolbox"
		}
		return "libx265"
	default:
		if goos == "darwin" {
			return "h264_videotoolbox"
		}
		return "libx264"
	}
}

func start(size int, run func(io.Reader) error) *Recorder {
	r := &Recorder{
		frameSize: size * size * 4,
		frames:    make(chan []byte, numBuffers),
		done:      make(chan error, 1),
		logger:    log.Default(),
	}

	pipeReader, pipeWriter := io.Pipe()
	errc := make(chan error, 1)
	go func() {
		err := run(pipeReader)
		// Unblock the writer if ffmpeg exits early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	go func() {
		writeErr := writeFrames(pipeWriter, r.frames)
		pipeWriter.Close()
		runErr := <-errc
		if runErr != nil {
			r.done <- fmt.Errorf("ffmpeg: %w", runErr)
			return
		}
		r.done <- writeErr
	}()
	return r
}

// writeFrames copies every frame to w until frames is closed. After a write
// error the remaining frames are drained and discarded.
func writeFrames(w io.Writer, frames <-chan []byte) error {
	var err error
	for frame := range frames {
		if err != nil {
			continue
		}
		if _, werr := w.Write(frame); werr != nil {
			err = fmt.Errorf("writing frame to encoder: %w", werr)
		}
	}
	return err
}

// Submit queues one frame without blocking. Frames are dropped while the
// encoder is behind.
func (r *Recorder) Submit(pixels []byte) {
	if r.closed {
		return
	}
	if len(pixels) != r.frameSize {
		r.logger.Printf("Warning: recorder got %d bytes, want %d. Dropping frame.", len(pixels), r.frameSize)
		r.dropped++
		return
	}
	select {
	case r.frames <- pixels:
	default:
		r.dropped++
		r.logger.Println("Warning: Frame channel is full. Dropping frame.")
	}
}

// Dropped returns the number of frames discarded so far.
func (r *Recorder) Dropped() int { return r.dropped }

// Close flushes queued frames and waits for ffmpeg to finish.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	close(r.frames)
	return <-r.done
}
