package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Search struct {
		Host     string   `yaml:"host"`    // e.g. jsearch.p.rapidapi.com
		Queries  []string `yaml:"queries"` // role keywords, fetched in order
		Region   string   `yaml:"region"`  // appended to every query ("in UAE")
		NumPages int      `yaml:"num_pages"`
	} `yaml:"search"`

	Dispatch struct {
		Cap                 int    `yaml:"cap"`
		SendIntervalSeconds int    `yaml:"send_interval_seconds"`
		Resend              string `yaml:"resend"` // pending | all
		AttachmentPath      string `yaml:"attachment_path"`
	} `yaml:"dispatch"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		FromName string `yaml:"from_name"`
	} `yaml:"smtp"`

	IMAP struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Mailbox  string `yaml:"mailbox"`
	} `yaml:"imap"`

	Schedule struct {
		Enabled bool  `yaml:"enabled"`
		Hours   []int `yaml:"hours"` // UTC hours-of-day, e.g. [8, 12, 14, 18]
	} `yaml:"schedule"`

	Enrich struct {
		Enabled   bool `yaml:"enabled"`
		MaxPerRun int  `yaml:"max_per_run"`
	} `yaml:"enrich"`
}

const (
	ResendPending = "pending"
	ResendAll     = "all"
)

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
