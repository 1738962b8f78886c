package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gabekutner/roommatefinder-backend/models"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var verbose bool

const thumbDirName = "thumbs"
const thumbSize = 256

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// preload cache of photo rows keyed by store_path so the watch loop avoids
// a query per file.
type preloadState struct {
	photosByPath map[string]*models.Photo
	mu           sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{photosByPath: make(map[string]*models.Photo, 1024)}
}

func (ps *preloadState) get(storePath string) (*models.Photo, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.photosByPath[storePath]
	return p, ok
}

func (ps *preloadState) put(p *models.Photo) {
	ps.mu.Lock()
	ps.photosByPath[p.StorePath] = p
	ps.mu.Unlock()
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// Main: scans the media directory for profile photos, generates square
// JPEG thumbnails next to them and links the thumb path on the Photo row.
// Optional watch mode picks up new uploads as they land.
func main() {
	dirFlag := flag.String("dir", "media", "media base directory to scan")
	dryRun := flag.Bool("dry-run", false, "Skip all DB writes; just list files that would be processed")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	photosDir := filepath.Join(*dirFlag, "photos")

	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", photosDir)
		files := listImageFiles(photosDir)
		log.Printf("Found %d candidate files", len(files))
		for _, f := range files {
			logV("would thumbnail %s", f)
		}
		return
	}

	db = mustInitDBFromEnv()
	ps := preloadAll()
	log.Printf("Preloaded: photos=%d", len(ps.photosByPath))

	files := listImageFiles(photosDir)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, ps, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, photosDir, ps); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// preloadAll fetches existing photo rows to minimize per-file queries.
func preloadAll() *preloadState {
	ps := newPreloadState()
	var photos []models.Photo
	if err := db.Find(&photos).Error; err == nil {
		for i := range photos {
			p := photos[i]
			ps.photosByPath[p.StorePath] = &p
		}
	}
	return ps
}

// listImageFiles walks photos/<profile-id>/ one level deep and returns
// paths relative to the photos dir, skipping thumbs.
func listImageFiles(photosDir string) []string {
	entries, err := os.ReadDir(photosDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(photosDir, e.Name()))
		if err != nil {
			continue
		}
		for _, f := range sub {
			if f.IsDir() || !isSupportedExt(f.Name()) {
				continue
			}
			out = append(out, filepath.Join(e.Name(), f.Name()))
		}
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

func runWorkerPool(mediaBase string, ps *preloadState, files []string, workers int) {
	fileCh := make(chan string, len(files))
	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range fileCh {
				processOne(mediaBase, ps, rel)
			}
		}()
	}
	wg.Wait()
}

// processOne thumbnails one photos/<profile-id>/<file> entry and records
// the thumb path on the matching Photo row (if any).
func processOne(mediaBase string, ps *preloadState, rel string) {
	storePath := filepath.Join("photos", rel)
	srcPath := filepath.Join(mediaBase, storePath)

	dir, name := filepath.Split(rel)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	thumbRel := filepath.Join("photos", dir, thumbDirName, base+".jpg")
	thumbPath := filepath.Join(mediaBase, thumbRel)

	if _, err := os.Stat(thumbPath); err == nil {
		logV("skip %s (thumb exists)", rel)
		ensureLinked(ps, storePath, thumbRel)
		return
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		log.Printf("open %s failed: %v", rel, err)
		return
	}
	thumb := imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)
	if err := os.MkdirAll(filepath.Dir(thumbPath), 0755); err != nil {
		log.Printf("mkdir for %s failed: %v", rel, err)
		return
	}
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(85)); err != nil {
		log.Printf("save thumb for %s failed: %v", rel, err)
		return
	}
	logV("thumbnailed %s -> %s", rel, thumbRel)
	ensureLinked(ps, storePath, thumbRel)
}

func ensureLinked(ps *preloadState, storePath, thumbRel string) {
	photo, ok := ps.get(storePath)
	if !ok {
		var p models.Photo
		if err := db.Where("store_path = ?", storePath).First(&p).Error; err != nil {
			logV("no photo row for %s", storePath)
			return
		}
		photo = &p
		ps.put(photo)
	}
	if photo.ThumbPath == thumbRel {
		return
	}
	if err := db.Model(photo).Update("thumb_path", thumbRel).Error; err != nil {
		log.Printf("link thumb for %s failed: %v", storePath, err)
		return
	}
	photo.ThumbPath = thumbRel
}

func watchDirectory(mediaBase, photosDir string, ps *preloadState) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(photosDir); err != nil {
		return err
	}
	// Watch existing per-profile subdirectories too; new ones are added
	// as their Create events arrive.
	entries, _ := os.ReadDir(photosDir)
	for _, e := range entries {
		if e.IsDir() && e.Name() != thumbDirName {
			_ = w.Add(filepath.Join(photosDir, e.Name()))
		}
	}
	log.Printf("Watching %s (debounced) ...", photosDir)

	// simple debounce map of pending files
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
				if filepath.Base(ev.Name) != thumbDirName {
					_ = w.Add(ev.Name)
				}
				continue
			}
			if !isSupportedExt(ev.Name) {
				continue
			}
			if rel, err := filepath.Rel(photosDir, ev.Name); err == nil {
				if !strings.Contains(rel, thumbDirName+string(filepath.Separator)) {
					pending[rel] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for rel, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					processOne(mediaBase, ps, rel)
					delete(pending, rel)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
