package listing

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/listora/listora/internal/models"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewPostgresRepository(db), mock
}

func listingColumns() []string {
	return []string{
		"id", "user_id", "title", "description", "tags", "email", "link",
		"image", "approved", "category_id", "created_at", "updated_at",
	}
}

func listingRow(rows *sqlmock.Rows, id int, title string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, 1, title, "description", "tags", "a@example.com", "https://example.com",
		nil, models.ApprovalApproved, nil, now, now)
}

func TestListSearchPatternAndWindow(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM listings").
		WithArgs("%jeux%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	// page 3, pageSize 10: OFFSET 20
	rows := listingRow(sqlmock.NewRows(listingColumns()), 21, "Annonce 21")
	rows = listingRow(rows, 22, "Annonce 22")
	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs("%jeux%", 10, 20).
		WillReturnRows(rows)

	listings, total, err := repo.List(ListParams{Page: 3, PageSize: 10, Search: "jeux"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(listings) != 2 {
		t.Fatalf("len(listings) = %d, want 2", len(listings))
	}
	if listings[0].ID != 21 {
		t.Errorf("listings[0].ID = %d, want 21", listings[0].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestListSortFieldWhitelist(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		desc      bool
		wantOrder string
	}{
		{"champ autorisé ascendant", "title", false, "ORDER BY title ASC"},
		{"champ autorisé descendant", "created_at", true, "ORDER BY created_at DESC"},
		{"champ inconnu retombe sur l'id", "password; DROP TABLE listings", false, "ORDER BY id ASC"},
		{"champ vide retombe sur l'id", "", true, "ORDER BY id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM listings").
				WithArgs("%%").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectQuery(tt.wantOrder).
				WithArgs("%%", 10, 0).
				WillReturnRows(sqlmock.NewRows(listingColumns()))

			_, _, err := repo.List(ListParams{Page: 1, PageSize: 10, SortField: tt.field, SortDesc: tt.desc})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestListByUserFiltersAndOrders(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM listings").
		WithArgs(4, "%%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := listingRow(sqlmock.NewRows(listingColumns()), 9, "Mon annonce")
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(4, "%%", 10, 0).
		WillReturnRows(rows)

	listings, total, err := repo.ListByUser(4, ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 1 || len(listings) != 1 {
		t.Fatalf("total = %d, len = %d, want 1 et 1", total, len(listings))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM listings").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(listingColumns()))

	_, err := repo.GetByID(99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertReturnsGeneratedFields(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	image := "uploads/listing_pictures/x.jpg"
	categoryID := 3
	mock.ExpectQuery("INSERT INTO listings").
		WithArgs(1, "Titre", "Description", "tag1,tag2", "a@example.com", "https://example.com",
			image, models.ApprovalPending, categoryID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(12, now, now))

	listing := &models.Listing{
		UserID:      1,
		Title:       "Titre",
		Description: "Description",
		Tags:        "tag1,tag2",
		Email:       "a@example.com",
		Link:        "https://example.com",
		Image:       &image,
		Approved:    models.ApprovalPending,
		CategoryID:  &categoryID,
	}

	if err := repo.Insert(listing); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if listing.ID != 12 {
		t.Errorf("ID = %d, want 12", listing.ID)
	}
}

func TestSetApprovalReportsMatch(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("UPDATE listings SET approved").
		WithArgs(models.ApprovalApproved, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE listings SET approved").
		WithArgs(models.ApprovalRejected, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SetApproval(5, models.ApprovalApproved)
	if err != nil || !ok {
		t.Fatalf("SetApproval(5): ok=%v err=%v", ok, err)
	}

	ok, err = repo.SetApproval(99, models.ApprovalRejected)
	if err != nil {
		t.Fatalf("SetApproval(99): %v", err)
	}
	if ok {
		t.Error("une annonce inexistante ne doit pas être signalée comme modifiée")
	}
}

func TestDeleteReportsMatch(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("DELETE FROM listings").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM listings").
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(7)
	if err != nil || !ok {
		t.Fatalf("Delete(7): ok=%v err=%v", ok, err)
	}

	ok, err = repo.Delete(99)
	if err != nil {
		t.Fatalf("Delete(99): %v", err)
	}
	if ok {
		t.Error("une annonce inexistante ne doit pas être signalée comme supprimée")
	}
}
