package planetview

import (
	"sync"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	conf := pvConfig()
	if conf.outputDir == "" {
		t.Fatal("output directory must default somewhere")
	}
	if conf.limbWidth <= 0 || conf.termWidth <= 0 || conf.ringWidth <= 0 || conf.gridWidth <= 0 {
		t.Fatal("line widths must default positive")
	}
	if conf.darkGray <= 0 || conf.darkGray >= 1 {
		t.Fatalf("dark gray %f outside (0, 1)", conf.darkGray)
	}
	if conf.dashOn <= 0 || conf.dashOff <= 0 {
		t.Fatal("dash pattern must default positive")
	}
	// loading twice returns the cached struct
	if pvConfig() != conf {
		t.Fatal("configuration not cached")
	}
}

// Renders run in parallel goroutines, so the lazy load must be
// race-free (run with -race).
func TestConfigConcurrentLoad(t *testing.T) {
	var wg sync.WaitGroup
	confs := make([]_pvconfig, 8)
	for i := range confs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			confs[i] = pvConfig()
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(confs); i++ {
		if confs[i] != confs[0] {
			t.Fatalf("goroutine %d saw a different configuration", i)
		}
	}
}
