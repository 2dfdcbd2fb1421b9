// Package server exposes compiles as HTTP jobs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/scene"
	"github.com/user/storyreel/pkg/timeline"
)

// Compiler runs one compile. *storyreel.Compiler satisfies it.
type Compiler interface {
	Compile(ctx context.Context, story *scene.Story, updates chan<- timeline.Progress) (timeline.Result, error)
}

// Options configures the server.
type Options struct {
	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string

	// MaxBodyBytes caps the size of a submitted story (default: 256 MiB).
	MaxBodyBytes int64

	// MaxActiveJobs limits concurrently running compiles (default: 2).
	MaxActiveJobs int

	// MaxFinishedJobs caps how many finished jobs and their media are
	// retained; the oldest are dropped first (default: 32).
	MaxFinishedJobs int

	// JobTTL drops finished jobs this long after they end (default: 1h).
	JobTTL time.Duration
}

// Server is the compile job API.
type Server struct {
	compiler Compiler
	logger   ports.Logger
	jobLog   ports.Logger
	opts     Options

	mu     sync.RWMutex
	jobs   map[string]*job
	active int
	wg     sync.WaitGroup

	now func() time.Time
}

// New creates a Server.
func New(compiler Compiler, logger ports.Logger, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 256 << 20
	}
	if opts.MaxActiveJobs <= 0 {
		opts.MaxActiveJobs = 2
	}
	if opts.MaxFinishedJobs <= 0 {
		opts.MaxFinishedJobs = 32
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = time.Hour
	}
	serverLog := logger.WithComponent("server")
	return &Server{
		compiler: compiler,
		logger:   serverLog,
		jobLog:   serverLog.WithComponent("jobs"),
		opts:     opts,
		jobs:     make(map[string]*job),
		now:      time.Now,
	}
}

// Router builds the gin engine serving the API.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if len(s.opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	api := router.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/compile", s.submit)
		api.GET("/jobs/:id", s.getJob)
		api.GET("/jobs/:id/download", s.download)
		api.DELETE("/jobs/:id", s.deleteJob)
	}
	return router
}

// Run serves on addr until ctx is done, then cancels running jobs and
// shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.CancelAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.Wait()
	return nil
}

// CancelAll cancels every running job.
func (s *Server) CancelAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		j.cancel()
	}
}

// Wait blocks until every job goroutine has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

// submit handles POST /api/compile
func (s *Server) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "story too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	story, err := scene.ParseStory(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(story.Scenes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": timeline.ErrNoScenes.Error()})
		return
	}

	s.mu.Lock()
	s.pruneLocked()
	if s.active >= s.opts.MaxActiveJobs {
		s.mu.Unlock()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": fmt.Sprintf("too many active jobs (max %d)", s.opts.MaxActiveJobs)})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	j := newJob(uuid.NewString(), story.Title, s.now(), cancel)
	s.jobs[j.id] = j
	s.active++
	s.wg.Add(1)
	s.mu.Unlock()

	s.jobLog.Info("Job %s accepted: %q, %d scenes", j.id, story.Title, len(story.Scenes))
	go s.process(ctx, j, story)

	c.JSON(http.StatusAccepted, j.status())
}

func (s *Server) process(ctx context.Context, j *job, story *scene.Story) {
	defer s.wg.Done()
	defer j.cancel()

	updates := make(chan timeline.Progress, 16)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for p := range updates {
			j.update(p)
		}
	}()

	result, err := s.compiler.Compile(ctx, story, updates)
	<-drained
	j.complete(result, err, s.now())

	s.mu.Lock()
	s.active--
	s.pruneLocked()
	s.mu.Unlock()

	if err != nil {
		s.jobLog.Warn("Job %s ended %s: %v", j.id, result.State, err)
		return
	}
	s.jobLog.Info("Job %s done: %d frames", j.id, result.Frames)
}

// pruneLocked drops finished jobs past the TTL, then the oldest finished
// jobs beyond MaxFinishedJobs. s.mu must be held for writing.
func (s *Server) pruneLocked() {
	cutoff := s.now().Add(-s.opts.JobTTL)

	var finished []*job
	for id, j := range s.jobs {
		ended, ok := j.endedAt()
		if !ok {
			continue
		}
		if ended.Before(cutoff) {
			delete(s.jobs, id)
			s.jobLog.Debug("Job %s expired", id)
			continue
		}
		finished = append(finished, j)
	}

	excess := len(finished) - s.opts.MaxFinishedJobs
	if excess <= 0 {
		return
	}
	sort.Slice(finished, func(a, b int) bool {
		ea, _ := finished[a].endedAt()
		eb, _ := finished[b].endedAt()
		return ea.Before(eb)
	})
	for _, j := range finished[:excess] {
		delete(s.jobs, j.id)
		s.jobLog.Debug("Job %s evicted", j.id)
	}
}

func (s *Server) lookup(c *gin.Context) (*job, bool) {
	s.mu.RLock()
	j, ok := s.jobs[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	}
	return j, ok
}

// getJob handles GET /api/jobs/:id
func (s *Server) getJob(c *gin.Context) {
	j, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, j.status())
}

// download handles GET /api/jobs/:id/download
func (s *Server) download(c *gin.Context) {
	j, ok := s.lookup(c)
	if !ok {
		return
	}

	j.mu.RLock()
	result := j.result
	j.mu.RUnlock()

	if result == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Job not completed yet"})
		return
	}
	if result.Blob == nil {
		c.JSON(http.StatusGone, gin.H{"error": fmt.Sprintf("Job ended %s without output", result.State)})
		return
	}

	blob := result.Blob
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.Filename))
	c.Data(http.StatusOK, blob.MIMEType, blob.Data)
}

// deleteJob handles DELETE /api/jobs/:id. A running job is cancelled; a
// finished one is forgotten.
func (s *Server) deleteJob(c *gin.Context) {
	j, ok := s.lookup(c)
	if !ok {
		return
	}

	if !j.finished() {
		j.cancel()
		s.jobLog.Info("Job %s cancel requested", j.id)
		c.JSON(http.StatusAccepted, j.status())
		return
	}

	s.mu.Lock()
	delete(s.jobs, j.id)
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// health handles GET /api/health
func (s *Server) health(c *gin.Context) {
	s.mu.RLock()
	jobs, active := len(s.jobs), s.active
	s.mu.RUnlock()

	resp := gin.H{
		"status":     "healthy",
		"time":       time.Now(),
		"jobs":       jobs,
		"activeJobs": active,
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp["memory"] = gin.H{
			"total":       vm.Total,
			"available":   vm.Available,
			"usedPercent": vm.UsedPercent,
		}
	}
	if n, err := cpu.Counts(true); err == nil {
		resp["cpus"] = n
	}
	c.JSON(http.StatusOK, resp)
}
