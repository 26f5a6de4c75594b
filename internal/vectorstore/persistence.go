package vectorstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	sentinelerrors "github.com/sentinel-rag/sentinel/internal/errors"
)

// snapshotEntry is one persisted vector plus its document and metadata.
type snapshotEntry struct {
	ID       string            `json:"id"`
	Vector   []float32         `json:"vector"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata"`
}

// snapshotFile is the on-disk shape of one collection's persisted state.
// The graph itself is never serialized; it is rebuilt by replaying Add in
// id order, which is deterministic given the same entries.
type snapshotFile struct {
	Dimensions int             `json:"dimensions"`
	Entries    []snapshotEntry `json:"entries"`
}

func snapshotPath(dir, collectionName string) string {
	return filepath.Join(dir, collectionName+".json")
}

func manifestPath(dir string) string {
	return filepath.Join(dir, "subjects.json")
}

// writeManifest records every subject id the store has seen, so a later
// LoadAll can recover subject ids from collection names, which
// CollectionName cannot reverse on its own.
func (s *Store) writeManifest(dir string) error {
	subjects := s.Subjects()
	data, err := json.Marshal(subjects)
	if err != nil {
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to marshal subject manifest", err)
	}
	path := manifestPath(dir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to write subject manifest", err)
	}
	return os.Rename(tmp, path)
}

func readManifest(dir string) ([]string, error) {
	data, err := os.ReadFile(manifestPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to read subject manifest", err)
	}
	var subjects []string
	if err := json.Unmarshal(data, &subjects); err != nil {
		return nil, sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to parse subject manifest", err)
	}
	return subjects, nil
}

// SaveCollection writes subject's collection to dir as "<collection>.json".
// Vectors are persisted post-normalization; Add renormalizes on load, which
// is idempotent for unit vectors.
func (s *Store) SaveCollection(dir, subject string) error {
	name := CollectionName(subject)
	col, ok := s.Get(subject)
	if !ok {
		return nil
	}

	vectors := col.AllVectors()
	documents := col.AllDocuments()
	metadatas := col.AllMetadata()

	ids := make([]string, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]snapshotEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, snapshotEntry{
			ID:       id,
			Vector:   vectors[id],
			Document: documents[id],
			Metadata: metadatas[id],
		})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to create persist directory", err)
	}

	data, err := json.Marshal(snapshotFile{Dimensions: col.Dimensions(), Entries: entries})
	if err != nil {
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to marshal collection snapshot", err)
	}

	path := snapshotPath(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to write collection snapshot", err)
	}
	return os.Rename(tmp, path)
}

// SaveAll persists every subject the store has seen to dir, one file per
// collection, plus a manifest recording the subject ids so LoadAll can find
// them again on the next run.
func (s *Store) SaveAll(dir string) error {
	for _, subject := range s.Subjects() {
		if err := s.SaveCollection(dir, subject); err != nil {
			return err
		}
	}
	return s.writeManifest(dir)
}

// LoadCollection reads "<collection>.json" from dir, if present, and
// replays its entries into subject's collection via Add. A missing file is
// not an error: the subject simply starts empty.
func (s *Store) LoadCollection(dir, subject string) error {
	name := CollectionName(subject)
	path := snapshotPath(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to read collection snapshot", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed, "failed to parse collection snapshot", err)
	}
	if len(snap.Entries) == 0 {
		s.GetOrCreate(subject)
		return nil
	}

	ids := make([]string, len(snap.Entries))
	vectors := make([][]float32, len(snap.Entries))
	documents := make([]string, len(snap.Entries))
	metadatas := make([]map[string]string, len(snap.Entries))
	for i, e := range snap.Entries {
		ids[i] = e.ID
		vectors[i] = e.Vector
		documents[i] = e.Document
		metadatas[i] = e.Metadata
	}

	col := s.GetOrCreate(subject)
	return col.Add(ids, vectors, documents, metadatas)
}

// LoadAll reads the subject manifest written by a prior SaveAll and replays
// every subject's snapshot into this store. A missing manifest (first run,
// nothing persisted yet) is not an error.
func (s *Store) LoadAll(dir string) error {
	subjects, err := readManifest(dir)
	if err != nil {
		return err
	}
	for _, subject := range subjects {
		if err := s.LoadCollection(dir, subject); err != nil {
			return err
		}
	}
	return nil
}
