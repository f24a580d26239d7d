package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/PjVineeth/vocab-assist/internal/asr"
	"github.com/PjVineeth/vocab-assist/internal/chunker"
	"github.com/PjVineeth/vocab-assist/internal/config"
	"github.com/PjVineeth/vocab-assist/internal/domain"
	"github.com/PjVineeth/vocab-assist/internal/engine"
	"github.com/PjVineeth/vocab-assist/internal/gemini"
	"github.com/PjVineeth/vocab-assist/internal/session"
	"github.com/PjVineeth/vocab-assist/internal/summarizer"
	"github.com/PjVineeth/vocab-assist/internal/tts"
	"github.com/PjVineeth/vocab-assist/internal/tui"
	"github.com/PjVineeth/vocab-assist/internal/watcher"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var docPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/assist/config.yaml if not provided)")
	flag.StringVar(&docPath, "doc", "", "Reference document to index (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if docPath != "" {
		cfg.DocumentPath = docPath
	}

	ctx := context.Background()

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKeyEnv:       cfg.Gemini.APIKeyEnv,
		EmbeddingModel:  cfg.Gemini.EmbeddingModel,
		ChatModel:       cfg.Gemini.ChatModel,
		Temperature:     cfg.Gemini.Temperature,
		TopP:            cfg.Gemini.TopP,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		Timeout:         time.Duration(cfg.Gemini.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("gemini client init failed: %v", err)
	}

	ch := chunker.NewCharacterChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	eng := engine.New(ch, client, client, engine.Options{
		TopK:                cfg.Retrieval.TopK,
		Persona:             cfg.Agent.Persona,
		Company:             cfg.Agent.Company,
		Greeting:            cfg.Agent.Greeting,
		RecordDegradedTurns: cfg.Agent.RecordDegradedTurns,
	})

	// Build the index up front. A failed build is not fatal: the agent
	// serves degraded replies until the document becomes usable.
	digest := ""
	data, err := os.ReadFile(cfg.DocumentPath)
	if err != nil {
		log.Printf("could not read %s: %v - starting without guidance", cfg.DocumentPath, err)
	} else if err := eng.BuildIndex(ctx, string(data)); err != nil {
		log.Printf("index build failed: %v - starting without guidance", err)
	} else {
		log.Printf("indexed %s (%d chunks)", cfg.DocumentPath, eng.ChunkCount())
		digest = summarizer.Digest(string(data), 2)
	}

	if cfg.WatchDoc {
		w, err := watcher.New(eng, cfg.DocumentPath)
		if err != nil {
			log.Printf("document watch disabled: %v", err)
		} else {
			go w.Run(ctx)
		}
	}

	var transcriber domain.Transcriber
	if cfg.ASR.URL != "" {
		transcriber = asr.NewClient(asr.Config{
			URL:     cfg.ASR.URL,
			Timeout: time.Duration(cfg.ASR.TimeoutSecs) * time.Second,
		})
	}
	var synth domain.Synthesizer
	if cfg.TTS.Enabled && cfg.TTS.URL != "" {
		synth = tts.NewClient(tts.Config{
			URL:     cfg.TTS.URL,
			Timeout: time.Duration(cfg.TTS.TimeoutSecs) * time.Second,
		})
	}

	sessions := session.NewManager()
	sess := sessions.Create()

	m := tui.New(tui.Options{
		Engine:      eng,
		Session:     sess,
		Transcriber: transcriber,
		Synthesizer: synth,
		AudioDir:    cfg.TTS.OutputDir,
		Greeting:    cfg.Agent.Greeting,
		Farewell:    cfg.Agent.Farewell,
		Digest:      digest,
	})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
