package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store define o contrato de armazenamento de mídia. Recebe o blob enviado e
// devolve uma referência estável (caminho) persistida junto da entidade.
type Store interface {
	Save(filename string, src io.Reader) (string, error)
}

// LocalStore grava os arquivos enviados em um diretório local, com nome
// único por upload (uuid + extensão original).
type LocalStore struct {
	Dir string
}

// NewLocalStore cria o diretório de uploads (se necessário) e retorna o store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de uploads: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

// Save copia o conteúdo para o diretório de uploads e devolve o caminho
// relativo gravado no banco.
func (s *LocalStore) Save(filename string, src io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(filename)
	path := filepath.Join(s.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("falha ao criar arquivo de upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("falha ao gravar arquivo de upload: %w", err)
	}

	return path, nil
}
