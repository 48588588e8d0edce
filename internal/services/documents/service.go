package documents

import (
    "context"
    "path"
    "strings"
    "time"

    "github.com/google/uuid"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

var categories = map[string]bool{
    "id": true, "proof_of_address": true, "credit_report": true,
    "bureau_response": true, "correspondence": true, "other": true,
}

type Service struct {
    repo    ports.DocumentRepository
    clients ports.ClientRepository
    audit   ports.Auditor
    now     func() time.Time
}

func New(repo ports.DocumentRepository, clients ports.ClientRepository, audit ports.Auditor) *Service {
    return &Service{repo: repo, clients: clients, audit: audit, now: time.Now}
}

// Input is document metadata; the file itself lives in external storage.
type Input struct {
    FileName    string `json:"fileName"`
    FileType    string `json:"fileType"`
    FileSize    int64  `json:"fileSize"`
    StoragePath string `json:"storagePath"`
    Category    string `json:"category"`
}

func (s *Service) Create(ctx context.Context, userID, clientID string, in Input) (domain.Document, error) {
    client, err := s.clients.GetClient(ctx, userID, clientID)
    if err != nil {
        return domain.Document{}, err
    }
    name := strings.TrimSpace(in.FileName)
    if name == "" {
        return domain.Document{}, domain.Invalidf("fileName", "required")
    }
    if strings.ContainsAny(name, `/\`) {
        return domain.Document{}, domain.Invalidf("fileName", "must not contain a path")
    }
    if in.FileSize < 0 {
        return domain.Document{}, domain.Invalidf("fileSize", "must not be negative")
    }
    cat := strings.ToLower(strings.TrimSpace(in.Category))
    if cat == "" {
        cat = "other"
    }
    if !categories[cat] {
        return domain.Document{}, domain.Invalidf("category", "unknown category %q", in.Category)
    }
    d := domain.Document{
        ID:          uuid.NewString(),
        ClientID:    client.ID,
        FileName:    name,
        FileType:    strings.ToLower(strings.TrimSpace(in.FileType)),
        FileSize:    in.FileSize,
        StoragePath: in.StoragePath,
        Category:    cat,
        UploadedAt:  s.now().UTC(),
    }
    if d.FileType == "" {
        d.FileType = strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
    }
    if d.StoragePath == "" {
        d.StoragePath = path.Join("clients", client.ID, d.ID+path.Ext(name))
    }
    if err := s.repo.CreateDocument(ctx, d); err != nil {
        return domain.Document{}, err
    }
    s.audit.Record(ctx, userID, "document.create", "document", d.ID, map[string]string{"client": client.ID, "file": name})
    return d, nil
}

func (s *Service) List(ctx context.Context, userID, clientID string) ([]domain.Document, error) {
    if _, err := s.clients.GetClient(ctx, userID, clientID); err != nil {
        return nil, err
    }
    return s.repo.ListDocuments(ctx, userID, clientID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
    if err := s.repo.DeleteDocument(ctx, userID, id); err != nil {
        return err
    }
    s.audit.Record(ctx, userID, "document.delete", "document", id, nil)
    return nil
}
