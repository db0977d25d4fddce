package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

// ストレージドライバの種類です。
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

const (
	defaultBulkParallelism = 8
	defaultApplicationName = "hr-attendance"
	defaultConnectTimeout  = 5 * time.Second
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Tables     TablesConfig     `yaml:"tables"`
	Attendance AttendanceConfig `yaml:"attendance"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig はレコードストアの実装選択に関する設定です。
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host                string        `yaml:"host"`
	Port                int           `yaml:"port"`
	User                string        `yaml:"user"`
	Password            string        `yaml:"password"`
	Name                string        `yaml:"name"`
	SSLMode             string        `yaml:"ssl_mode"`
	ApplicationName     string        `yaml:"application_name"`
	MaxOpenConns        int           `yaml:"max_open_conns"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	ConnMaxLifetime     time.Duration `yaml:"-"`
	ConnMaxIdleTime     time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw  string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw  string        `yaml:"conn_max_idle_time"`
	StatementTimeout    time.Duration `yaml:"-"`
	ConnectTimeout      time.Duration `yaml:"-"`
	StatementTimeoutRaw string        `yaml:"statement_timeout"`
	ConnectTimeoutRaw   string        `yaml:"connect_timeout"`
}

// TablesConfig はレコードストア上のテーブル名です。
type TablesConfig struct {
	Employee          string `yaml:"employee"`
	Attendance        string `yaml:"attendance"`
	PerformanceReview string `yaml:"performance_review"`
	Project           string `yaml:"project"`
	ProjectAssignment string `yaml:"project_assignment"`
	Department        string `yaml:"department"`
	ReportSchedule    string `yaml:"report_schedule"`
}

// AttendanceConfig は勤怠処理に関する設定です。
type AttendanceConfig struct {
	Timezone        string         `yaml:"timezone"`
	BulkParallelism int            `yaml:"bulk_parallelism"`
	Location        *time.Location `yaml:"-"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = StorageDriverPostgres
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("config: storage.driver %q is not supported", c.Storage.Driver)
	}

	if c.Storage.Driver == StorageDriverPostgres {
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	}

	c.Tables.applyDefaults()
	if err := c.Tables.validate(); err != nil {
		return err
	}

	return c.Attendance.validateAndNormalize()
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	setDefault(&d.ApplicationName, defaultApplicationName)

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	statementTimeout, err := parseDurationAllowEmpty(d.StatementTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: database.statement_timeout: %w", err)
	}
	d.StatementTimeout = statementTimeout

	connectTimeout, err := parseDurationAllowEmpty(d.ConnectTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: database.connect_timeout: %w", err)
	}
	if connectTimeout == 0 {
		connectTimeout = defaultConnectTimeout
	}
	d.ConnectTimeout = connectTimeout

	return nil
}

func (t *TablesConfig) applyDefaults() {
	setDefault(&t.Employee, "employee")
	setDefault(&t.Attendance, "attendance")
	setDefault(&t.PerformanceReview, "performance_review")
	setDefault(&t.Project, "project")
	setDefault(&t.ProjectAssignment, "project_assignment")
	setDefault(&t.Department, "department")
	setDefault(&t.ReportSchedule, "report_schedule")
}

func (t *TablesConfig) validate() error {
	names := []struct {
		key   string
		value string
	}{
		{"employee", t.Employee},
		{"attendance", t.Attendance},
		{"performance_review", t.PerformanceReview},
		{"project", t.Project},
		{"project_assignment", t.ProjectAssignment},
		{"department", t.Department},
		{"report_schedule", t.ReportSchedule},
	}
	for _, n := range names {
		if err := recordstore.ValidateTable(n.value); err != nil {
			return fmt.Errorf("config: tables.%s %q: %w", n.key, n.value, err)
		}
	}
	return nil
}

func (a *AttendanceConfig) validateAndNormalize() error {
	if a.Timezone == "" {
		a.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return fmt.Errorf("config: attendance.timezone: %w", err)
	}
	a.Location = loc

	if a.BulkParallelism < 0 {
		return fmt.Errorf("config: attendance.bulk_parallelism must not be negative")
	}
	if a.BulkParallelism == 0 {
		a.BulkParallelism = defaultBulkParallelism
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
