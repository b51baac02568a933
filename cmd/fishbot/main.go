package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"fishing-bot/internal/bot"
	"fishing-bot/internal/config"
	"fishing-bot/internal/detector"
	"fishing-bot/internal/game"
	"fishing-bot/internal/input"
	"fishing-bot/internal/listener"
	"fishing-bot/internal/pkg/paths"
	"fishing-bot/internal/vision"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config, defaults apply when empty")
	videoPath := flag.String("video", "", "run against a recording instead of the live window")
	windowTitle := flag.String("window", "", "game window title override")
	processName := flag.String("process", "", "game process name override")
	resizeFactor := flag.Float64("resize", 0, "downsample factor override for template matching (0 < f <= 1)")
	debug := flag.Bool("debug", false, "show the vision overlay window")
	fast := flag.Bool("fast", false, "synchronous mode: capture, vision and decision on one thread")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[fishbot] %v\n", err)
	}
	if *windowTitle != "" {
		cfg.WindowTitle = *windowTitle
	}
	if *processName != "" {
		cfg.ProcessName = *processName
	}
	if *resizeFactor != 0 {
		cfg.ResizeFactor = *resizeFactor
		if err := cfg.Validate(); err != nil {
			log.Fatalf("[fishbot] %v\n", err)
		}
	}

	defer handlePanic(cfg)

	templatePath := cfg.TemplatePath
	if !filepath.IsAbs(templatePath) {
		templatePath = paths.GetAbsolutePath(templatePath)
	}
	template, err := detector.LoadTemplate(templatePath)
	if err != nil {
		log.Fatalf("[fishbot] %v\n", err)
	}
	locator, err := detector.NewTemplateLocator(template, cfg.LowScale, cfg.HighScale, cfg.NumScales, cfg.ResizeFactor)
	template.Close()
	if err != nil {
		log.Fatalf("[fishbot] %v\n", err)
	}
	defer locator.Close()

	v := vision.New(locator, cfg.VisionConfig(*debug))
	defer v.Close()

	var src vision.FrameSource
	if *videoPath != "" {
		video, err := game.NewVideoSource(*videoPath)
		if err != nil {
			log.Fatalf("[fishbot] %v\n", err)
		}
		defer video.Close()
		src = video
		log.Printf("[fishbot] running against video %s\n", *videoPath)
	} else {
		g, err := game.NewGame(cfg.ProcessName, cfg.WindowTitle)
		if err != nil {
			log.Fatalf("[fishbot] %v\n", err)
		}
		if ok := g.Initialize(int32(cfg.WindowWidth), int32(cfg.WindowHeight)); !ok {
			return
		}
		src = g
	}

	stream := vision.NewStream(src, v)
	machine := bot.NewMachine(cfg.MachineConfig(), time.Now())
	loop := bot.NewLoop(stream, machine, input.NewRobotgoSink(), cfg.DecisionInterval.Std(), *fast)

	if *debug {
		// The window is created lazily inside the callback so every HighGUI
		// call, creation included, happens on the one goroutine that renders
		// (the capture goroutine in concurrent mode, main in fast mode).
		var window *gocv.Window
		loop.AfterFrame = func() {
			dbg, ok := stream.DebugFrame()
			if !ok {
				return
			}
			if window == nil {
				window = gocv.NewWindow("fishbot vision")
			}
			window.IMShow(dbg)
			if window.WaitKey(1) == 27 { // Esc pauses/resumes clicking
				loop.ToggleActuation()
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lst := listener.New(cancel)
	go lst.Start(ctx)

	// F10 or a signal can arrive before F9 arms the bot; bail out instead
	// of waiting on Open forever.
	select {
	case <-lst.Open:
	case <-ctx.Done():
		fmt.Println(machine.Stats().Report())
		return
	}

	err = loop.Run(ctx)
	if err != nil {
		log.Printf("[fishbot] loop ended: %v\n", err)
	}
	fmt.Println(machine.Stats().Report())
}

func handlePanic(cfg *config.Config) {
	if r := recover(); r != nil {
		input.ReleaseAll(cfg.BaitKey, cfg.StartKey)
		fmt.Println("\n============ panic ===============")
		fmt.Printf("error: %v\n", r)

		fmt.Print("press enter to exit...")
		bufio.NewReader(os.Stdin).ReadString('\n')
	}
}
