package system

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// diskDegradedPercent marks the data volume as nearly full
const diskDegradedPercent = 95.0

// SystemStats describes the host the server runs on
type SystemStats struct {
	Hostname  string        `json:"hostname"`
	CPU       CPUStats      `json:"cpu"`
	Memory    MemoryStats   `json:"memory"`
	Disk      DiskStats     `json:"disk"`
	Database  DatabaseStats `json:"database"`
	Degraded  bool          `json:"degraded"`
	Timestamp time.Time     `json:"timestamp"`
}

// CPUStats represents CPU usage statistics
type CPUStats struct {
	UsagePercent float64 `json:"usage_percent"`
	Cores        int     `json:"cores"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Available    uint64  `json:"available_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskStats is the usage of the volume holding the database
type DiskStats struct {
	Total        uint64  `json:"total_bytes"`
	Used         uint64  `json:"used_bytes"`
	Free         uint64  `json:"free_bytes"`
	UsagePercent float64 `json:"usage_percent"`
	Path         string  `json:"path"`
}

// DatabaseStats reports the SQLite file
type DatabaseStats struct {
	SizeBytes int64 `json:"size_bytes"`
}

// DatabaseFile is satisfied by *db.DB
type DatabaseFile interface {
	GetDBPath() string
	FileSize() (int64, error)
}

// Collector collects host statistics
type Collector struct {
	database DatabaseFile
}

// NewCollector creates a new system stats collector
func NewCollector(database DatabaseFile) *Collector {
	return &Collector{database: database}
}

// GetSystemStats collects all statistics in parallel
func (c *Collector) GetSystemStats() *SystemStats {
	var (
		cpuStats  CPUStats
		memStats  MemoryStats
		diskStats DiskStats
		dbStats   DatabaseStats
		wg        sync.WaitGroup
	)
	wg.Add(4)

	go func() {
		defer wg.Done()
		cpuStats = c.getCPUStats()
	}()
	go func() {
		defer wg.Done()
		memStats = c.getMemoryStats()
	}()
	go func() {
		defer wg.Done()
		diskStats = c.getDiskStats(c.dataDir())
	}()
	go func() {
		defer wg.Done()
		dbStats = c.getDatabaseStats()
	}()

	wg.Wait()

	hostname, err := os.Hostname()
	if err != nil {
		slog.Warn("failed to get hostname", "error", err)
		hostname = "unknown"
	}

	return &SystemStats{
		Hostname:  hostname,
		CPU:       cpuStats,
		Memory:    memStats,
		Disk:      diskStats,
		Database:  dbStats,
		Degraded:  diskStats.UsagePercent >= diskDegradedPercent,
		Timestamp: time.Now(),
	}
}

func (c *Collector) dataDir() string {
	return filepath.Dir(c.database.GetDBPath())
}

// getCPUStats retrieves CPU usage statistics
func (c *Collector) getCPUStats() CPUStats {
	cores, err := cpu.Counts(true)
	if err != nil {
		slog.Warn("failed to get CPU count", "error", err)
		cores = 1
	}

	// A zero interval returns the usage since the previous call without blocking
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		slog.Warn("failed to get CPU usage", "error", err)
		return CPUStats{Cores: cores}
	}

	usagePercent := 0.0
	if len(percentages) > 0 {
		usagePercent = percentages[0]
	}
	return CPUStats{UsagePercent: usagePercent, Cores: cores}
}

// getMemoryStats retrieves memory usage statistics
func (c *Collector) getMemoryStats() MemoryStats {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		slog.Warn("failed to get memory stats", "error", err)
		return MemoryStats{}
	}
	return MemoryStats{
		Total:        vmStat.Total,
		Used:         vmStat.Used,
		Available:    vmStat.Available,
		UsagePercent: vmStat.UsedPercent,
	}
}

// getDiskStats retrieves disk usage statistics for a given path
func (c *Collector) getDiskStats(path string) DiskStats {
	usage, err := disk.Usage(path)
	if err != nil {
		slog.Warn("failed to get disk stats", "path", path, "error", err)
		return DiskStats{Path: path}
	}
	return DiskStats{
		Total:        usage.Total,
		Used:         usage.Used,
		Free:         usage.Free,
		UsagePercent: usage.UsedPercent,
		Path:         path,
	}
}

func (c *Collector) getDatabaseStats() DatabaseStats {
	size, err := c.database.FileSize()
	if err != nil {
		slog.Warn("failed to stat database file", "path", c.database.GetDBPath(), "error", err)
		return DatabaseStats{}
	}
	return DatabaseStats{SizeBytes: size}
}

// RegisterMetrics exposes the data volume and database size as gauges
func (c *Collector) RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "applytrack",
			Subsystem: "storage",
			Name:      "disk_free_bytes",
			Help:      "Free bytes on the volume holding the database.",
		}, func() float64 {
			return float64(c.getDiskStats(c.dataDir()).Free)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "applytrack",
			Subsystem: "storage",
			Name:      "database_size_bytes",
			Help:      "Size of the SQLite database file.",
		}, func() float64 {
			return float64(c.getDatabaseStats().SizeBytes)
		}),
	)
}
