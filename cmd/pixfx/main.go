// pixfx is a command line photo processor over the pixfx library. It
// applies a filter variant, color adjustments, geometry and an optional
// preset file to an input image and writes the result.
//
// Usage:
//
//	pixfx -in photo.jpg -out edited.png -filter orchid -brightness 0.1
//	pixfx -in photo.jpg -out edited.jpg -preset wedding.json
//	pixfx -list-filters
//
// Configuration may also come from the environment (a .env file is
// loaded when present): PIXFX_BACKEND selects the rendering backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pixfx/pixfx"
	"github.com/pixfx/pixfx/backend"
	_ "github.com/pixfx/pixfx/backend/wgpu"
)

func main() {
	var (
		inPath      = flag.String("in", "", "input image (png, jpeg or gif)")
		outPath     = flag.String("out", "", "output image (png or jpeg)")
		presetPath  = flag.String("preset", "", "preset JSON file")
		filterName  = flag.String("filter", "", "filter variant (see -list-filters)")
		brightness  = flag.Float64("brightness", 0, "brightness shift in [-1,1]")
		contrast    = flag.Float64("contrast", 1, "contrast factor, 1 = unchanged")
		saturation  = flag.Float64("saturation", 1, "saturation factor, 1 = unchanged")
		crop        = flag.String("crop", "", "normalized crop rect \"x0,y0,x1,y1\"")
		rotate      = flag.Int("rotate", 0, "clockwise rotation, multiple of 90")
		flip        = flag.String("flip", "", "mirror axes: h, v or hv")
		backendName = flag.String("backend", "", "rendering backend: software or wgpu (default: best available)")
		quality     = flag.Int("quality", 90, "jpeg quality")
		listFilters = flag.Bool("list-filters", false, "print available filter variants and exit")
		showVersion = flag.Bool("version", false, "print version and exit")
		debug       = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	// Mimic godotenv.Load() convention: a missing .env is not an error.
	_ = godotenv.Load()

	logger := initLogger(*debug)
	if *debug {
		pixfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if *showVersion {
		fmt.Printf("pixfx %s\n", pixfx.Version)
		return
	}
	if *listFilters {
		for _, name := range pixfx.FilterNames() {
			fmt.Println(name)
		}
		return
	}
	if *inPath == "" || *outPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(logger, options{
		in:          *inPath,
		out:         *outPath,
		preset:      *presetPath,
		filter:      *filterName,
		brightness:  *brightness,
		contrast:    *contrast,
		saturation:  *saturation,
		crop:        *crop,
		rotate:      *rotate,
		flip:        *flip,
		backendName: *backendName,
		quality:     *quality,
	}); err != nil {
		logger.WithError(err).Fatal("processing failed")
	}
}

type options struct {
	in, out     string
	preset      string
	filter      string
	brightness  float64
	contrast    float64
	saturation  float64
	crop        string
	rotate      int
	flip        string
	backendName string
	quality     int
}

func run(logger *logrus.Logger, opts options) error {
	src, err := pixfx.LoadPixmap(opts.in)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"input":  opts.in,
		"width":  src.Width(),
		"height": src.Height(),
	}).Info("image loaded")

	be, err := selectBackend(opts.backendName)
	if err != nil {
		return err
	}
	defer be.Close()
	logger.WithField("backend", be.Name()).Info("backend selected")

	session, err := pixfx.NewSession(src, pixfx.WithRenderer(be.NewRenderer()))
	if err != nil {
		return err
	}
	defer session.Close()

	// Batch all configuration into a single render.
	session.Pause()

	if opts.preset != "" {
		preset, err := LoadPreset(opts.preset)
		if err != nil {
			return err
		}
		if err := preset.Configure(session); err != nil {
			return err
		}
		logger.WithField("preset", preset.Name).Info("preset applied")
	}
	if err := configure(session, opts); err != nil {
		return err
	}

	session.Resume()

	result, err := session.RenderSync(context.Background())
	if err != nil {
		return err
	}

	if strings.HasSuffix(strings.ToLower(opts.out), ".jpg") ||
		strings.HasSuffix(strings.ToLower(opts.out), ".jpeg") {
		err = result.SaveJPEG(opts.out, opts.quality)
	} else {
		err = result.Save(opts.out)
	}
	if err != nil {
		return err
	}
	logger.WithField("output", opts.out).Info("image written")
	return nil
}

// configure translates the command line flags into session operations.
func configure(session *pixfx.Session, opts options) error {
	if opts.filter != "" {
		op, err := session.Activate(pixfx.OpFilters)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.FilterOperation).SetFilter(opts.filter); err != nil {
			return err
		}
	}
	if opts.brightness != 0 {
		op, err := session.Activate(pixfx.OpBrightness)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.BrightnessOperation).SetAmount(opts.brightness); err != nil {
			return err
		}
	}
	if opts.contrast != 1 {
		op, err := session.Activate(pixfx.OpContrast)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.ContrastOperation).SetAmount(opts.contrast); err != nil {
			return err
		}
	}
	if opts.saturation != 1 {
		op, err := session.Activate(pixfx.OpSaturation)
		if err != nil {
			return err
		}
		if err := op.(*pixfx.SaturationOperation).SetAmount(opts.saturation); err != nil {
			return err
		}
	}
	if opts.crop != "" || opts.rotate != 0 {
		op, err := session.Activate(pixfx.OpCropRotation)
		if err != nil {
			return err
		}
		cr := op.(*pixfx.CropRotationOperation)
		if opts.crop != "" {
			var x0, y0, x1, y1 float64
			if _, err := fmt.Sscanf(opts.crop, "%f,%f,%f,%f", &x0, &y0, &x1, &y1); err != nil {
				return fmt.Errorf("invalid -crop %q: %w", opts.crop, err)
			}
			if err := cr.SetCrop(x0, y0, x1, y1); err != nil {
				return err
			}
		}
		if opts.rotate != 0 {
			if err := cr.SetRotation(opts.rotate); err != nil {
				return err
			}
		}
	}
	if opts.flip != "" {
		op, err := session.Activate(pixfx.OpFlip)
		if err != nil {
			return err
		}
		fl := op.(*pixfx.FlipOperation)
		switch opts.flip {
		case "h":
			fl.SetHorizontal(true)
		case "v":
			fl.SetVertical(true)
		case "hv", "vh":
			fl.SetHorizontal(true)
			fl.SetVertical(true)
		default:
			return fmt.Errorf("invalid -flip %q: want h, v or hv", opts.flip)
		}
	}
	return nil
}

// selectBackend resolves the backend flag, the PIXFX_BACKEND variable and
// finally the registry priority order.
func selectBackend(name string) (backend.RenderBackend, error) {
	if name == "" {
		name = os.Getenv("PIXFX_BACKEND")
	}
	if name == "" {
		return backend.InitDefault()
	}
	be, err := backend.Get(name)
	if err != nil {
		return nil, err
	}
	if err := be.Init(); err != nil {
		return nil, err
	}
	return be, nil
}

func initLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return logger
}
