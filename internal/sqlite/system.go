package sqlite

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

// SystemPartDoc is one permitted part in a game-system schema document.
// part_type carries the textual kind name ("Main", "Body", ...).
type SystemPartDoc struct {
	PartName   string `mapstructure:"part_name" toml:"part_name"`
	PartType   string `mapstructure:"part_type" toml:"part_type"`
	Obligatory bool   `mapstructure:"obligatory" toml:"obligatory"`
}

// SystemAttributeDoc is one permitted attribute in a game-system schema
// document.
type SystemAttributeDoc struct {
	Key                  string `mapstructure:"key" toml:"key"`
	AttributeType        int64  `mapstructure:"attribute_type" toml:"attribute_type"`
	AttributeDescription string `mapstructure:"attribute_description" toml:"attribute_description"`
	PartName             string `mapstructure:"part_name" toml:"part_name"`
	PartType             string `mapstructure:"part_type" toml:"part_type"`
	Obligatory           bool   `mapstructure:"obligatory" toml:"obligatory"`
}

// SystemDoc is the external schema document a game system is created from.
type SystemDoc struct {
	PermittedParts      []SystemPartDoc      `mapstructure:"permitted_parts" toml:"permitted_parts"`
	PermittedAttributes []SystemAttributeDoc `mapstructure:"permitted_attributes" toml:"permitted_attributes"`
}

// LoadSystemDoc parses a TOML game-system schema document from disk.
func LoadSystemDoc(path string) (SystemDoc, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return SystemDoc{}, fmt.Errorf("reading system document %s: %w", path, err)
	}
	var doc SystemDoc
	if err := v.Unmarshal(&doc); err != nil {
		return SystemDoc{}, fmt.Errorf("decoding system document %s: %w", path, err)
	}
	return doc, nil
}

// permitted resolves the document into typed schema rows, rejecting unknown
// part kind names.
func (d SystemDoc) permitted() ([]types.PermittedPart, []types.PermittedAttribute, error) {
	parts := make([]types.PermittedPart, 0, len(d.PermittedParts))
	for _, p := range d.PermittedParts {
		kind, err := types.ParsePartKind(p.PartType)
		if err != nil {
			return nil, nil, fmt.Errorf("permitted part %q: %w", p.PartName, err)
		}
		parts = append(parts, types.PermittedPart{
			Name:       p.PartName,
			Kind:       kind,
			Obligatory: p.Obligatory,
		})
	}
	attrs := make([]types.PermittedAttribute, 0, len(d.PermittedAttributes))
	for _, a := range d.PermittedAttributes {
		kind, err := types.ParsePartKind(a.PartType)
		if err != nil {
			return nil, nil, fmt.Errorf("permitted attribute %q: %w", a.Key, err)
		}
		attrs = append(attrs, types.PermittedAttribute{
			Key:         a.Key,
			KindOfValue: a.AttributeType,
			Description: a.AttributeDescription,
			PartName:    a.PartName,
			PartKind:    kind,
			Obligatory:  a.Obligatory,
		})
	}
	return parts, attrs, nil
}

// CreateSystem builds a new game system from a schema document: it creates
// the root catalog store at cfg.RootPath(), fills the permitted tables
// inside one transaction, and returns the loaded catalog. The root store
// must not already exist.
func CreateSystem(cfg types.Config, doc SystemDoc) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parts, attrs, err := doc.permitted()
	if err != nil {
		return nil, err
	}

	rootPath := cfg.RootPath()
	if _, err := os.Stat(rootPath); err == nil {
		return nil, fmt.Errorf("system %q already exists at %s", cfg.System, rootPath)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	handle := newConn(rootPath)
	db, err := handle.open()
	if err != nil {
		return nil, err
	}
	if err := applyDDL(db, rootDDL); err != nil {
		handle.close()
		removeStoreFiles(rootPath)
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		handle.close()
		removeStoreFiles(rootPath)
		return nil, fmt.Errorf("beginning system import: %w", err)
	}
	err = func() error {
		defer tx.Rollback()
		partStmt, err := tx.Prepare(
			"INSERT INTO permitted_parts (part_name, part_type, obligatory) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing permitted part insert: %w", err)
		}
		defer partStmt.Close()
		for _, p := range parts {
			if _, err := partStmt.Exec(p.Name, int64(p.Kind), p.Obligatory); err != nil {
				return fmt.Errorf("inserting permitted part %q: %w", p.Name, err)
			}
		}
		attrStmt, err := tx.Prepare(
			"INSERT INTO permitted_attributes (key, attribute_type, attribute_description, part_name, part_type, obligatory) " +
				"VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing permitted attribute insert: %w", err)
		}
		defer attrStmt.Close()
		for _, a := range attrs {
			_, err := attrStmt.Exec(a.Key, a.KindOfValue, a.Description, a.PartName, int64(a.PartKind), a.Obligatory)
			if err != nil {
				return fmt.Errorf("inserting permitted attribute %q: %w", a.Key, err)
			}
		}
		return tx.Commit()
	}()
	if cerr := handle.close(); err == nil {
		err = cerr
	}
	if err != nil {
		removeStoreFiles(rootPath)
		return nil, err
	}

	return Load(cfg)
}
