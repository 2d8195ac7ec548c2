// Copyright (C) 2024 vrc-get contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package environment

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/lonelyicer/vrc-get/pkg/version"
)

// unityBucket is the bolt bucket holding one JSON document per known
// Unity installation.
var unityBucket = []byte("unityInstallations")

// UnityInstallation is one row of the installation registry. Version
// keeps whatever the editor reported, even when unparseable; rows with
// an unparseable version are preserved and simply never match a
// lookup. Paths are unique across rows.
type UnityInstallation struct {
	ID            string `json:"id"`
	Path          string `json:"path"`
	Version       string `json:"version"`
	LoadedFromHub bool   `json:"loadedFromHub"`
}

// ParsedVersion returns the row's editor version, or nil when the
// stored string does not parse.
func (u *UnityInstallation) ParsedVersion() *version.UnityVersion {
	v, err := version.ParseUnityVersion(u.Version)
	if err != nil {
		return nil
	}
	return v
}

// database is the embedded document store of the environment. Rows are
// keyed by insertion sequence so iteration order is stable.
type database struct {
	db *bolt.DB
}

// openDatabase opens (creating if necessary) the store at path.
func openDatabase(path string) (*database, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %q", path)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(unityBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create unity bucket")
	}

	return &database{db: db}, nil
}

// Close closes the underlying store.
func (d *database) Close() error {
	return d.db.Close()
}

// InsertUnityInstallation appends a row, assigning an id when none is
// set.
func (d *database) InsertUnityInstallation(u *UnityInstallation) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	return d.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(unityBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(u)
		if err != nil {
			return err
		}

		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return bucket.Put(key[:], data)
	})
}

// UpdateUnityInstallation rewrites the row with the same id.
func (d *database) UpdateUnityInstallation(u *UnityInstallation) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(unityBucket)

		cursor := bucket.Cursor()
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			var row UnityInstallation
			if err := json.Unmarshal(value, &row); err != nil {
				return err
			}
			if row.ID != u.ID {
				continue
			}

			data, err := json.Marshal(u)
			if err != nil {
				return err
			}
			return bucket.Put(key, data)
		}

		return errors.Errorf("no unity installation with id %s", u.ID)
	})
}

// DeleteUnityInstallationByID removes the row with the given id. A
// missing row is not an error.
func (d *database) DeleteUnityInstallationByID(id string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(unityBucket)

		cursor := bucket.Cursor()
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			var row UnityInstallation
			if err := json.Unmarshal(value, &row); err != nil {
				return err
			}
			if row.ID == id {
				return bucket.Delete(key)
			}
		}
		return nil
	})
}

// GetUnityInstallations returns every row in insertion order.
func (d *database) GetUnityInstallations() ([]UnityInstallation, error) {
	var rows []UnityInstallation
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(unityBucket).ForEach(func(_, value []byte) error {
			var row UnityInstallation
			if err := json.Unmarshal(value, &row); err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list unity installations")
	}
	return rows, nil
}
