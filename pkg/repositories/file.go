package repositories

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

const scoreKeyPrefix = "Player"

// FileScoreRepository stores scores as a flat text table, one
// "Player<id> <count>" line per slot. Saves rewrite the whole file.
type FileScoreRepository struct {
	path string
}

func NewFileScoreRepository(path string) *FileScoreRepository {
	return &FileScoreRepository{path: path}
}

func (r *FileScoreRepository) Path() string {
	return r.path
}

// LoadScores parses the table best-effort: lines that do not parse, however
// long, are skipped, so a file truncated by a crash mid-save still loads. A
// read error part way through returns the entries parsed so far with it.
func (r *FileScoreRepository) LoadScores(ctx context.Context) (map[int]int, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{Store: r.path}
		}
		return nil, fmt.Errorf("failed to open score file %s: %v", r.path, err)
	}
	defer f.Close()

	scores := make(map[int]int)
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if id, count, ok := parseScoreLine(line); ok {
			scores[id] = count
		}
		if err == io.EOF {
			return scores, nil
		}
		if err != nil {
			return scores, fmt.Errorf("failed to read score file %s: %v", r.path, err)
		}
	}
}

func parseScoreLine(line string) (id int, count int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 || !strings.HasPrefix(fields[0], scoreKeyPrefix) {
		return 0, 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(fields[0], scoreKeyPrefix))
	if err != nil {
		return 0, 0, false
	}
	count, err = strconv.Atoi(fields[1])
	if err != nil || count < 0 {
		return 0, 0, false
	}
	return id, count, true
}

func (r *FileScoreRepository) SaveScores(ctx context.Context, scores map[int]int) error {
	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	b := &strings.Builder{}
	for _, id := range ids {
		fmt.Fprintf(b, "%s%d %d\n", scoreKeyPrefix, id, scores[id])
	}

	if err := os.WriteFile(r.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write score file %s: %v", r.path, err)
	}
	return nil
}

func (r *FileScoreRepository) Close(ctx context.Context) error {
	return nil
}
