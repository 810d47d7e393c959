package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
)

var albumCols = []string{
	"id", "title", "artist_id", "artist_name", "release_year", "cover_url",
	"description", "created_at", "total_tracks", "total_duration",
}

func TestCreateArtist(t *testing.T) {
	s, mock := newMockStore(t, 0)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO artists").
		WithArgs(pgxmock.AnyArg(), "Pink Floyd", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	a, err := s.CreateArtist(context.Background(), NewArtist{Name: "Pink Floyd", Genre: strPtr("Rock")})
	require.NoError(t, err)
	assert.Equal(t, "Pink Floyd", a.Name)
	assert.Equal(t, now, a.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = s.CreateArtist(context.Background(), NewArtist{Name: " "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGetArtist(t *testing.T) {
	s, mock := newMockStore(t, 0)
	id := store.NewID()

	mock.ExpectQuery("FROM artists ar").WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "genre", "bio", "image_url", "created_at", "total_albums", "total_tracks",
		}).AddRow(id, "Pink Floyd", strPtr("Rock"), nil, nil, time.Now(), 2, 6))

	a, err := s.GetArtist(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, a.TotalAlbums)
	assert.Equal(t, 6, a.TotalTracks)
	assert.Equal(t, "Rock", *a.Genre)
	assert.Nil(t, a.Bio)

	mock.ExpectQuery("FROM artists ar").WithArgs(id).WillReturnError(pgx.ErrNoRows)
	_, err = s.GetArtist(context.Background(), id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteArtist_PurgesAlbumRefs(t *testing.T) {
	f := newFixture()
	s, mock := newMockStore(t, 8)

	mock.ExpectQuery(`FROM tracks\s+WHERE id`).WithArgs(f.money.ID).WillReturnRows(trackRows(f.money))
	mock.ExpectQuery(`WHERE al.id`).WithArgs(f.albumID).WillReturnRows(albumRefRows(f.money))
	_, err := s.GetTrack(context.Background(), f.money.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.albums.Len())

	mock.ExpectExec("DELETE FROM artists").WithArgs(f.artistID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.DeleteArtist(context.Background(), f.artistID))
	assert.Equal(t, 0, s.albums.Len())

	mock.ExpectQuery(`FROM tracks\s+WHERE id`).WithArgs(f.money.ID).WillReturnError(pgx.ErrNoRows)
	_, err = s.GetTrack(context.Background(), f.money.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlbumsByArtist(t *testing.T) {
	s, mock := newMockStore(t, 0)
	artistID := store.NewID()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(artistID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("WHERE al.artist_id").WithArgs(artistID).
		WillReturnRows(pgxmock.NewRows(albumCols).
			AddRow(store.NewID(), "Meddle", artistID, "Pink Floyd", intPtr(1971), nil, nil, time.Now(), 6, 2800).
			AddRow(store.NewID(), "The Dark Side of the Moon", artistID, "Pink Floyd", intPtr(1973), nil, nil, time.Now(), 10, 2580))
	mock.ExpectCommit()

	albums, err := s.ListAlbumsByArtist(context.Background(), artistID)
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, "Meddle", albums[0].Title)
	assert.Equal(t, 10, albums[1].TotalTracks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlbumsByArtist_MissingArtist(t *testing.T) {
	s, mock := newMockStore(t, 0)
	artistID := store.NewID()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(artistID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := s.ListAlbumsByArtist(context.Background(), artistID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAlbum(t *testing.T) {
	s, mock := newMockStore(t, 0)
	artistID := store.NewID()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(artistID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO albums").
		WithArgs(pgxmock.AnyArg(), "Animals", artistID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("WHERE al.id").WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(albumCols).
			AddRow(store.NewID(), "Animals", artistID, "Pink Floyd", intPtr(1977), nil, nil, time.Now(), 0, 0))
	mock.ExpectCommit()

	a, err := s.CreateAlbum(context.Background(), NewAlbum{Title: "Animals", ArtistID: artistID, ReleaseYear: intPtr(1977)})
	require.NoError(t, err)
	assert.Equal(t, "Pink Floyd", a.ArtistName)
	assert.Zero(t, a.TotalTracks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAlbum_NotFound(t *testing.T) {
	s, mock := newMockStore(t, 0)
	id := store.NewID()
	mock.ExpectExec("DELETE FROM albums").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteAlbum(context.Background(), id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
