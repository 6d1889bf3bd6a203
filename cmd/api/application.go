package main

import (
	"log/slog"

	"amdb/proj/internal/api/tasks"
	"amdb/proj/internal/config"
	"amdb/proj/internal/lib/decoder"
	"amdb/proj/internal/lib/validator"
	"amdb/proj/internal/services"

	govalidator "github.com/go-playground/validator/v10"
)

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	Services  *services.Services
	validator *govalidator.Validate
	decoder   *decoder.URLDecoder
	bgTasks   *tasks.BackgroundTasks
}

func NewApplication(cfg *config.Config, log *slog.Logger, services *services.Services, bgTasks *tasks.BackgroundTasks) *Application {
	return &Application{
		cfg:       cfg,
		log:       log,
		validator: validator.New(),
		decoder:   decoder.New(),
		Services:  services,
		bgTasks:   bgTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
