//go:build pprof

package main

import (
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
)

const mb = 1024 * 1024

func initProfiling() {
	go func() {
		log.Info().Msgf("pprof server started at http://localhost:7777/debug/pprof/")
		log.Error().Err(http.ListenAndServe("localhost:7777", nil)).Msg("pprof server failed")
	}()
	go func() {
		ticker := time.NewTicker(time.Second * 10)
		defer ticker.Stop()
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			log.Info().
				Uint64("heap_alloc_mb", m.HeapAlloc/mb).
				Uint64("sys_mb", m.Sys/mb).
				Int("goroutines", runtime.NumGoroutine()).
				Uint32("gc", m.NumGC).
				Msg("memstats")
		}
	}()
}
