package model

// Movie is a catalog entry in the `movies` table.  Read-mostly;
// no concurrency concerns beyond standard CRUD.
//
// Fields mirror the columns one-to-one.  Optional presentation
// fields (backdrop, director, cast) may be empty strings.
type Movie struct {
	ID          uint64 // movies.id
	Title       string // movies.title
	Description string // movies.description
	Genre       string // movies.genre
	Duration    string // movies.duration (display string, e.g. "2h 19m")
	Rating      string // movies.rating
	ReleaseDate string // movies.release_date
	PosterImg   string // movies.poster_img
	BackdropImg string // movies.backdrop_img
	Director    string // movies.director
	Cast        string // movies.cast
}
