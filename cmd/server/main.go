package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"billdoc/internal/config"
	"billdoc/internal/email/noop"
	"billdoc/internal/email/ses"
	"billdoc/internal/handler"
	"billdoc/internal/metrics"
	"billdoc/internal/parser"
	"billdoc/internal/parser/claude"
	"billdoc/internal/parser/gemini"
	"billdoc/internal/parser/openai"
	"billdoc/internal/port"
	"billdoc/internal/repository/postgres"
	"billdoc/internal/router"
	"billdoc/internal/service"
	s3storage "billdoc/internal/storage/s3"
	"billdoc/internal/templates"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	configureLogging(&cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := metrics.New()

	// Initialize repositories
	generationRepo := postgres.NewGenerationRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	tplSource, err := templates.NewSource(&cfg.Template, s3Client,
		m.TemplateCacheHits.Inc, m.TemplateCacheMisses.Inc)
	if err != nil {
		return fmt.Errorf("failed to initialize template source: %w", err)
	}

	docParser, err := newDocumentParser(&cfg.Parser)
	if err != nil {
		return err
	}

	emailSender, err := newEmailSender(&cfg.Email)
	if err != nil {
		return err
	}

	// Initialize services
	billSvc := service.NewBillService(docParser, &cfg.S3, m)
	generationSvc := service.NewGenerationService(tplSource, s3Client, generationRepo, emailSender, billSvc,
		&cfg.Template, &cfg.Output, m)

	// Initialize handlers
	billH := handler.NewBillHandler(billSvc)
	documentH := handler.NewDocumentHandler(generationSvc)
	generationH := handler.NewGenerationHandler(generationSvc)
	healthH := handler.NewHealthHandler(db, tplSource, cfg.Template.DefaultName)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, m, billH, documentH, generationH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func configureLogging(cfg *config.LogConfig) {
	if cfg.Format == "json" {
		log.SetFlags(log.LUTC | log.Ldate | log.Ltime | log.Lmicroseconds)
		return
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// newDocumentParser builds the extraction chain: primary, then any configured fallbacks.
func newDocumentParser(cfg *config.ParserConfig) (port.DocumentParser, error) {
	parser.RegisterProvider("gemini", func(c *config.ParserProviderConfig) (port.DocumentParser, error) {
		return gemini.NewParser(c), nil
	})
	parser.RegisterProvider("claude", func(c *config.ParserProviderConfig) (port.DocumentParser, error) {
		return claude.NewParser(c), nil
	})
	parser.RegisterProvider("openai", func(c *config.ParserProviderConfig) (port.DocumentParser, error) {
		return openai.NewParser(c), nil
	})

	chain := cfg.Chain()
	names := make([]string, len(chain))
	for i, pc := range chain {
		names[i] = pc.Provider
	}
	log.Printf("Extraction providers (fallback order): %v", names)

	return parser.NewChain(chain)
}

func newEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		sender, err := ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		return sender, nil
	case "", "noop":
		return noop.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
