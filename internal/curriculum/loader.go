package curriculum

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin
var builtinFS embed.FS

type FSLoader struct{}

func NewLoader() *FSLoader { return &FSLoader{} }

// LoadBuiltin loads the catalog compiled into the binary.
func (l *FSLoader) LoadBuiltin(ctx context.Context) ([]Module, error) {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	return l.LoadModules(ctx, sub)
}

func (l *FSLoader) LoadDir(ctx context.Context, root string) ([]Module, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	return l.LoadModules(ctx, os.DirFS(root))
}

// LoadModules reads every <dir>/module.yaml at the root of fsys along with
// its lessons, either from the module's lessons manifest or by scanning
// <dir>/lessons/*/lesson.yaml.
func (l *FSLoader) LoadModules(ctx context.Context, fsys fs.FS) ([]Module, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	modules := make([]Module, 0)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		moduleYAML := path.Join(entry.Name(), "module.yaml")
		if _, err := fs.Stat(fsys, moduleYAML); err != nil {
			continue
		}
		module, err := readModule(fsys, moduleYAML)
		if err != nil {
			return nil, fmt.Errorf("load module %s: %w", entry.Name(), err)
		}
		module.Path = entry.Name()

		lessons, err := readLessons(fsys, module)
		if err != nil {
			return nil, err
		}
		module.LoadedLessons = lessons
		modules = append(modules, module)
	}

	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Order != modules[j].Order {
			return modules[i].Order < modules[j].Order
		}
		return modules[i].ModuleID < modules[j].ModuleID
	})
	return modules, nil
}

func readModule(fsys fs.FS, name string) (Module, error) {
	var module Module
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return module, err
	}
	if err := yaml.Unmarshal(b, &module); err != nil {
		return module, err
	}
	if err := module.Validate(); err != nil {
		return module, err
	}
	applyQuizDefaults(&module)
	return module, nil
}

func readLessons(fsys fs.FS, module Module) ([]Lesson, error) {
	if len(module.Lessons) > 0 {
		return readLessonsFromManifest(fsys, module)
	}
	return readLessonsFromScan(fsys, module)
}

func readLessonsFromManifest(fsys fs.FS, module Module) ([]Lesson, error) {
	lessons := make([]Lesson, 0, len(module.Lessons))
	for _, ref := range module.Lessons {
		if ref.Enabled != nil && !*ref.Enabled {
			continue
		}
		dir := path.Join(module.Path, ref.Path)
		lesson, err := loadLessonFile(fsys, path.Join(dir, "lesson.yaml"))
		if err != nil {
			return nil, err
		}
		if lesson.LessonID != ref.LessonID {
			return nil, fmt.Errorf("lesson id mismatch for %s: manifest=%s file=%s", dir, ref.LessonID, lesson.LessonID)
		}
		if err := hydrateLesson(&lesson, module, dir); err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

func readLessonsFromScan(fsys fs.FS, module Module) ([]Lesson, error) {
	root := path.Join(module.Path, "lessons")
	lessons := make([]Lesson, 0)
	entries, err := fs.ReadDir(fsys, root)
	if errors.Is(err, fs.ErrNotExist) {
		return lessons, nil
	}
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ly := path.Join(root, e.Name(), "lesson.yaml")
		if _, err := fs.Stat(fsys, ly); err != nil {
			continue
		}
		lesson, err := loadLessonFile(fsys, ly)
		if err != nil {
			return nil, err
		}
		if err := hydrateLesson(&lesson, module, path.Dir(ly)); err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].LessonID < lessons[j].LessonID })
	return lessons, nil
}

func loadLessonFile(fsys fs.FS, name string) (Lesson, error) {
	var lesson Lesson
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return lesson, err
	}
	if err := yaml.Unmarshal(b, &lesson); err != nil {
		return lesson, fmt.Errorf("parse %s: %w", name, err)
	}
	if err := lesson.Validate(); err != nil {
		return lesson, fmt.Errorf("validate %s: %w", name, err)
	}
	return lesson, nil
}

func hydrateLesson(lesson *Lesson, module Module, dir string) error {
	if !strings.HasPrefix(lesson.LessonID, module.ModuleID) {
		return fmt.Errorf("lesson %s must be prefixed by module id %s", lesson.LessonID, module.ModuleID)
	}
	lesson.Path = dir
	lesson.ModuleID = module.ModuleID
	applyLessonDefaults(lesson)
	return nil
}

func applyLessonDefaults(lesson *Lesson) {
	if lesson.XPReward == 0 {
		lesson.XPReward = 15
	}
	if lesson.EstimatedMinutes <= 0 {
		lesson.EstimatedMinutes = 15
	}
	if lesson.Difficulty == "" {
		lesson.Difficulty = "beginner"
	}
	if lesson.Exercise == nil {
		return
	}
	for i := range lesson.Exercise.Checks {
		if lesson.Exercise.Checks[i].Required == nil {
			v := true
			lesson.Exercise.Checks[i].Required = &v
		}
	}
}

func applyQuizDefaults(module *Module) {
	for i := range module.Quizzes {
		q := &module.Quizzes[i]
		if q.PassingScore == 0 {
			q.PassingScore = 70
		}
		if q.XPReward == 0 {
			q.XPReward = 20
		}
	}
}
