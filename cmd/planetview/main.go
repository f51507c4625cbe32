package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	planetview "github.com/SETI/rms-planetview"
	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/julian"
	"github.com/spf13/viper"
)

// This code only reads a scenario file and renders the plot it describes.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05"
)

var (
	scenario string
	verbose  bool
	table    bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "viewer scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "log per-object drawing diagnostics")
	flag.BoolVar(&table, "table", false, "append the field-of-view table to the plot")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Read view parameters
	ra := planetview.Deg2rad(viper.GetFloat64("view.ra"))
	dec := planetview.Deg2rad(viper.GetFloat64("view.dec"))
	vt, err := planetview.NewViewTransform(planetview.CameraMatrix(ra, dec),
		viper.GetFloat64("view.scale"),
		viper.GetFloat64("view.halfWidth"),
		viper.GetFloat64("view.halfHeight"))
	if err != nil {
		log.Fatalf("view: %s", err)
	}

	epoch := confReadJDEorTime("plot.epoch")
	jd := julian.TimeToJD(epoch)
	scene := &planetview.Scene{
		Title:         viper.GetString("plot.title"),
		JD:            jd,
		View:          vt,
		SuppressUnlit: viper.GetBool("plot.suppressUnlit"),
	}
	if arcJD := viper.GetFloat64("plot.arcEpochJD"); arcJD != 0 {
		scene.ElapsedSec = (jd - arcJD) * 86400
	}

	// Read bodies; index 0 is the planet
	for bodyNo := 0; viper.IsSet(fmt.Sprintf("bodies.%d.name", bodyNo)); bodyNo++ {
		key := fmt.Sprintf("bodies.%d", bodyNo)
		name := viper.GetString(key + ".name")
		center := confReadVec3(key + ".center")
		radii := confReadVec3(key + ".radii")
		var body planetview.Ellipsoid
		if viper.IsSet(key + ".pole") {
			pole := confReadVec3(key + ".pole")
			body = planetview.NewOrientedEllipsoid(name, center, pole, [3]float64{radii[0], radii[1], radii[2]})
		} else {
			body = planetview.NewSphere(name, center, radii[0])
		}
		body.Merids = viper.GetInt(key + ".merids")
		body.LatCircles = viper.GetInt(key + ".latCircles")
		scene.Bodies = append(scene.Bodies, body)

		if system := viper.GetString(key + ".rings"); system != "" {
			rs, rerr := planetview.RingSystemFromString(system)
			if rerr != nil {
				log.Fatalf("body %s: %s", name, rerr)
			}
			pole := confReadVec3(key + ".pole")
			scene.Rings = append(scene.Rings, rs.Instantiate(bodyNo, center, pole, scene.ElapsedSec)...)
		}
	}

	for lightNo := 0; viper.IsSet(fmt.Sprintf("lights.%d.name", lightNo)); lightNo++ {
		key := fmt.Sprintf("lights.%d", lightNo)
		scene.Lights = append(scene.Lights, planetview.LightSource{
			Name:   viper.GetString(key + ".name"),
			Pos:    confReadVec3(key + ".pos"),
			Radius: viper.GetFloat64(key + ".radius"),
		})
	}

	for starNo := 0; viper.IsSet(fmt.Sprintf("stars.%d.name", starNo)); starNo++ {
		key := fmt.Sprintf("stars.%d", starNo)
		scene.Stars = append(scene.Stars, planetview.Star{
			Name: viper.GetString(key + ".name"),
			Dir:  confReadVec3(key + ".dir"),
			Mag:  viper.GetFloat64(key + ".mag"),
		})
	}

	for labelNo := 0; viper.IsSet(fmt.Sprintf("labels.%d.text", labelNo)); labelNo++ {
		key := fmt.Sprintf("labels.%d", labelNo)
		pos := confReadVec2(key + ".at")
		scene.Labels = append(scene.Labels, planetview.Label{
			Text: viper.GetString(key + ".text"),
			At:   pos,
		})
	}

	var renderer *planetview.Renderer
	if verbose {
		renderer = planetview.NewRenderer(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)))
	} else {
		renderer = planetview.NewRenderer(nil)
	}
	renderer.Summary = table || viper.GetBool("plot.table")

	output := viper.GetString("plot.output")
	if output == "" {
		output = scenario + ".ps"
	}
	doc, err := renderer.Render(scene)
	if err != nil {
		log.Fatalf("render: %s", err)
	}
	doc.CreationDate = epoch.Format(dateFormat)
	if err := doc.WriteFile(output); err != nil {
		log.Fatalf("write: %s", err)
	}
	if verbose {
		log.Printf("wrote %s", output)
	}
}

func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		dt = viper.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}

func confReadVec3(key string) []float64 {
	vals := confFloats(key)
	if len(vals) != 3 {
		log.Fatalf("%s: expected 3 components, got %d", key, len(vals))
	}
	return vals
}

func confReadVec2(key string) [2]float64 {
	vals := confFloats(key)
	if len(vals) != 2 {
		log.Fatalf("%s: expected 2 components, got %d", key, len(vals))
	}
	return [2]float64{vals[0], vals[1]}
}

func confFloats(key string) []float64 {
	raw := viper.Get(key)
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	vals := make([]float64, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			vals = append(vals, v)
		case int64:
			vals = append(vals, float64(v))
		case int:
			vals = append(vals, float64(v))
		default:
			log.Fatalf("%s: non-numeric component %v", key, item)
		}
	}
	return vals
}
