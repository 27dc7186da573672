// Package storage implements the engine's storage manager: instance
// registration, whole-file load and commit under advisory locking, and
// the `_meta` entity-descriptor instance.
//
// Grounded on original_source/deeb_core/src/database/mod.rs's
// DatabaseInstance/load/commit (which uses the Rust `fs2` crate's
// lock_exclusive/unlock around a full read-then-truncate-then-write), with
// the commit path strengthened per the core's redesign: a temp file plus
// os.Rename instead of truncate-in-place, so a crash mid-write never
// leaves a half-written instance file on disk.
package storage

import (
	"os"
	"path/filepath"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/errs"
	"github.com/shelfdb/shelfdb/logging"
	"github.com/shelfdb/shelfdb/value"
)

const metaInstanceName = entity.InstanceName("_meta")
const metaEntityName = entity.Name("_meta")

// Instance is one physical JSON file plus the entities it hosts and their
// in-memory document sequences.
type Instance struct {
	Name     entity.InstanceName
	Path     string
	Entities []entity.Entity
	Data     map[entity.Name][]value.Value
}

// Manager owns the instance registry and all file I/O. Callers are
// expected to serialize access to a Manager behind their own
// reader/writer coordination point (see the engine package); Manager
// itself only protects individual files via advisory locks.
type Manager struct {
	instances map[entity.InstanceName]*Instance
	order     []entity.InstanceName
	metaPath  string
	fileMode  os.FileMode
}

// New returns a Manager that persists the `_meta` descriptor file at
// metaPath, creating instance files with the given permission mode.
func New(metaPath string, fileMode os.FileMode) *Manager {
	return &Manager{
		instances: make(map[entity.InstanceName]*Instance),
		metaPath:  metaPath,
		fileMode:  fileMode,
	}
}

// Register declares an instance backed by path, hosting entities. It is
// idempotent: re-registering the same name replaces the prior
// declaration. It does not touch the instance's own file, but it does
// update the in-memory `_meta` descriptor set and persist it.
//
// Returns a Conflict error if any of entities is already declared by a
// different instance.
func (m *Manager) Register(name entity.InstanceName, path string, entities []entity.Entity) error {
	for _, e := range entities {
		if owner, ok := m.findOwner(e.Name); ok && owner != name {
			return errs.Conflictf("entity %q already declared by instance %q", e.Name, owner)
		}
	}

	inst, exists := m.instances[name]
	if !exists {
		inst = &Instance{Name: name}
		m.instances[name] = inst
		m.order = append(m.order, name)
	}
	inst.Path = path
	inst.Entities = entities
	if inst.Data == nil {
		inst.Data = make(map[entity.Name][]value.Value)
	}

	for _, e := range entities {
		m.putMeta(e)
	}
	return m.writeMeta()
}

// findOwner returns the instance declaring entity e, if any.
func (m *Manager) findOwner(e entity.Name) (entity.InstanceName, bool) {
	for _, name := range m.order {
		for _, declared := range m.instances[name].Entities {
			if declared.Name == e {
				return name, true
			}
		}
	}
	return "", false
}

// Instance returns the registered instance by name.
func (m *Manager) Instance(name entity.InstanceName) (*Instance, error) {
	inst, ok := m.instances[name]
	if !ok {
		return nil, errs.NotFoundf("instance %q is not registered", name)
	}
	return inst, nil
}

// LookupInstanceByEntity returns the instance that declares entity e.
func (m *Manager) LookupInstanceByEntity(e entity.Name) (*Instance, error) {
	name, ok := m.findOwner(e)
	if !ok {
		return nil, errs.NotFoundf("no instance declares entity %q", e)
	}
	return m.instances[name], nil
}

// FindEntity returns the declared entity e from whichever instance owns it.
func (m *Manager) FindEntity(e entity.Name) (entity.Entity, error) {
	inst, err := m.LookupInstanceByEntity(e)
	if err != nil {
		return entity.Entity{}, err
	}
	for _, declared := range inst.Entities {
		if declared.Name == e {
			return declared, nil
		}
	}
	return entity.Entity{}, errs.NotFoundf("entity %q vanished from instance %q", e, inst.Name)
}

// Load opens the instance's file under an exclusive advisory lock. If the
// file is absent, it is created holding an empty array for each declared
// entity. If present, its whole-file JSON object is deserialized into the
// instance's in-memory data.
func (m *Manager) Load(name entity.InstanceName) error {
	inst, err := m.Instance(name)
	if err != nil {
		return err
	}

	lock := newFileLock(inst.Path)
	if err := lock.lock(); err != nil {
		return errs.Storagef(err, "locking instance %q at %q", name, inst.Path)
	}
	defer lock.unlock()

	raw, err := os.ReadFile(inst.Path)
	if os.IsNotExist(err) {
		inst.Data = emptyData(inst.Entities)
		if err := m.writeWhole(inst); err != nil {
			return err
		}
		logging.Logger.Info("storage: initialized instance file", "instance", name, "path", inst.Path)
		return nil
	}
	if err != nil {
		return errs.Storagef(err, "reading instance %q at %q", name, inst.Path)
	}

	doc, err := value.Parse(raw)
	if err != nil {
		return errs.Storagef(err, "parsing instance %q at %q", name, inst.Path)
	}
	obj, ok := doc.AsObject()
	if !ok {
		return errs.Storagef(nil, "instance %q at %q is not a JSON object", name, inst.Path)
	}

	data := emptyData(inst.Entities)
	obj.Range(func(key string, v value.Value) bool {
		items, ok := v.AsArray()
		if !ok {
			return true
		}
		data[entity.Name(key)] = append([]value.Value(nil), items...)
		return true
	})
	inst.Data = data
	return nil
}

// Commit writes each named instance's in-memory data to its file whole,
// under an exclusive advisory lock, via a temporary file plus atomic
// rename so a crash mid-write can never leave a truncated file behind.
func (m *Manager) Commit(names []entity.InstanceName) error {
	for _, name := range names {
		inst, err := m.Instance(name)
		if err != nil {
			return err
		}
		lock := newFileLock(inst.Path)
		if err := lock.lock(); err != nil {
			return errs.Storagef(err, "locking instance %q at %q", name, inst.Path)
		}
		err = m.writeWhole(inst)
		lock.unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) writeWhole(inst *Instance) error {
	o := value.NewObject()
	for _, e := range inst.Entities {
		o.Set(string(e.Name), value.Arr(inst.Data[e.Name]))
	}
	encoded, err := value.Obj(o).MarshalJSON()
	if err != nil {
		return errs.Storagef(err, "serializing instance %q", inst.Name)
	}
	if err := atomicWrite(inst.Path, encoded, m.fileMode); err != nil {
		return errs.Storagef(err, "writing instance %q at %q", inst.Name, inst.Path)
	}
	return nil
}

func atomicWrite(path string, data []byte, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func emptyData(entities []entity.Entity) map[entity.Name][]value.Value {
	data := make(map[entity.Name][]value.Value, len(entities))
	for _, e := range entities {
		data[e.Name] = []value.Value{}
	}
	return data
}

// putMeta inserts or replaces e's descriptor in the in-memory `_meta`
// instance, keyed by entity name.
func (m *Manager) putMeta(e entity.Entity) {
	meta := m.ensureMeta()
	docs := meta.Data[metaEntityName]
	for i, d := range docs {
		obj, ok := d.AsObject()
		if !ok {
			continue
		}
		if nameField, ok := obj.Get("name"); ok {
			if s, ok := nameField.AsString(); ok && entity.Name(s) == e.Name {
				docs[i] = describeEntity(e)
				meta.Data[metaEntityName] = docs
				return
			}
		}
	}
	meta.Data[metaEntityName] = append(docs, describeEntity(e))
}

func (m *Manager) ensureMeta() *Instance {
	inst, ok := m.instances[metaInstanceName]
	if !ok {
		inst = &Instance{
			Name:     metaInstanceName,
			Path:     m.metaPath,
			Entities: []entity.Entity{entity.New(metaEntityName)},
			Data:     map[entity.Name][]value.Value{metaEntityName: {}},
		}
		m.instances[metaInstanceName] = inst
		m.order = append(m.order, metaInstanceName)
	}
	return inst
}

func (m *Manager) writeMeta() error {
	return m.writeWhole(m.ensureMeta())
}

func describeEntity(e entity.Entity) value.Value {
	o := value.NewObject()
	o.Set("name", value.String(string(e.Name)))
	if e.PrimaryKey != "" {
		o.Set("primary_key", value.String(e.PrimaryKey))
	} else {
		o.Set("primary_key", value.Null())
	}

	assocs := make([]value.Value, len(e.Associations))
	for i, a := range e.Associations {
		ao := value.NewObject()
		ao.Set("from", value.String(a.From))
		ao.Set("to", value.String(a.To))
		ao.Set("entity_name", value.String(string(a.EntityName)))
		ao.Set("alias", value.String(a.Alias))
		assocs[i] = value.Obj(ao)
	}
	o.Set("associations", value.Arr(assocs))

	indexes := make([]value.Value, len(e.Indexes))
	for i, ix := range e.Indexes {
		io := value.NewObject()
		io.Set("name", value.String(ix.Name))
		cols := make([]value.Value, len(ix.Columns))
		for j, c := range ix.Columns {
			cols[j] = value.String(c)
		}
		io.Set("columns", value.Arr(cols))
		indexes[i] = value.Obj(io)
	}
	o.Set("indexes", value.Arr(indexes))

	return value.Obj(o)
}
