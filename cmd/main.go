package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/richinsley/azurescens/control"
	"github.com/richinsley/azurescens/fps"
	"github.com/richinsley/azurescens/glfwcontext"
	"github.com/richinsley/azurescens/input"
	"github.com/richinsley/azurescens/options"
	"github.com/richinsley/azurescens/params"
	"github.com/richinsley/azurescens/record"
	"github.com/richinsley/azurescens/renderer"
	"github.com/richinsley/azurescens/screenshot"
	"github.com/richinsley/azurescens/shader"
)

func init() {
	runtime.LockOSThread()
}

func parseFlags() *options.EngineOptions {
	opts := &options.EngineOptions{
		Help:          flag.Bool("help", false, "Show help message"),
		Width:         flag.Int("width", 1024, "Initial window width"),
		Height:        flag.Int("height", 1024, "Initial window height"),
		TextureSize:   flag.Int("texture-size", renderer.FeedbackTextureSize, "Edge length of the square feedback textures"),
		ControlAddr:   flag.String("control", "127.0.0.1:8080", "Listen address of the control panel (empty disables it)"),
		ShaderDir:     flag.String("shaders", "", "Load fragment shaders from this directory instead of the built-in ones"),
		ScreenshotDir: flag.String("screenshots", ".", "Directory screenshots are written to"),
		OutputFile:    flag.String("record", "", "Record the feedback texture to this video file"),
		RecordFPS:     flag.Int("record-fps", 60, "Frame rate of the recording"),
		FFMPEGPath:    flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:         flag.String("codec", "h264", "Recording codec: h264 or hevc"),
	}
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()
	if *opts.Help {
		fmt.Println("azurescens: interactive video feedback")
		fmt.Println("Move the pointer to steer, press 's' for a screenshot, Escape to quit.")
		flag.PrintDefaults()
		return
	}
	if *opts.TextureSize <= 0 {
		log.Fatalf("Invalid texture size %d", *opts.TextureSize)
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(*opts.Width, *opts.Height)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer ctx.Shutdown()

	store := params.NewStore(params.Default())

	var panel *control.Server
	if *opts.ControlAddr != "" {
		panel = control.NewServer(*opts.ControlAddr, store)
		// Bind before the first frame so a busy port fails startup directly.
		ln, err := panel.Listen()
		if err != nil {
			log.Fatalf("Failed to start control panel (use -control \"\" to disable it): %v", err)
		}
		go func() {
			if err := panel.Serve(ln); err != nil {
				log.Printf("Control panel stopped: %v", err)
			}
		}()
	}

	backend, err := renderer.NewGLBackend(ctx, *opts.TextureSize, shader.Loader{Dir: *opts.ShaderDir})
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	defer backend.Destroy()

	loop := &renderer.Loop{
		Context:  ctx,
		Pipeline: renderer.NewPipeline(backend, store, ctx.Time),
		Router:   input.NewRouter(),
		FPS:      fps.New(),
		Saver:    screenshot.NewSaver(*opts.ScreenshotDir),
	}

	var recorder *record.Recorder
	if *opts.OutputFile != "" {
		recorder, err = record.New(record.Options{
			OutputFile: *opts.OutputFile,
			Size:       *opts.TextureSize,
			FPS:        *opts.RecordFPS,
			Codec:      *opts.Codec,
			FFMPEGPath: *opts.FFMPEGPath,
		})
		if err != nil {
			log.Fatalf("Failed to start recording: %v", err)
		}
		loop.Sink = recorder
		log.Printf("Recording to %s", *opts.OutputFile)
	}

	runErr := loop.Run()

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Printf("Recording failed: %v", err)
		} else {
			log.Printf("Recorded %s (%d frames dropped)", *opts.OutputFile, recorder.Dropped())
		}
	}
	if panel != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		panel.Shutdown(shutdownCtx)
		cancel()
	}
	if runErr != nil {
		log.Fatalf("Render loop failed: %v", runErr)
	}
}
