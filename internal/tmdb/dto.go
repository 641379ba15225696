package tmdb

import (
	"marquee/internal/media"
)

// Wire types for TMDB v3 responses. Movies carry "title"/"release_date",
// series carry "name"/"first_air_date"; multi-search adds "media_type".

type resultDTO struct {
	ID            int     `json:"id"`
	MediaType     string  `json:"media_type"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Name          string  `json:"name"`
	OriginalName  string  `json:"original_name"`
	FirstAirDate  string  `json:"first_air_date"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	GenreIDs      []int   `json:"genre_ids"`
}

type pageDTO struct {
	Page         int         `json:"page"`
	Results      []resultDTO `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type genreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genresDTO struct {
	Genres []genreDTO `json:"genres"`
}

type externalIDsDTO struct {
	IMDbID string `json:"imdb_id"`
}

type seasonDTO struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
}

type detailsDTO struct {
	resultDTO
	IMDbID  string      `json:"imdb_id"`
	Runtime int         `json:"runtime"`
	Tagline string      `json:"tagline"`
	Genres  []genreDTO  `json:"genres"`
	Seasons []seasonDTO `json:"seasons"`
}

// toItem converts a result into the tagged Item shape. kind is the
// discriminator chosen by the caller (endpoint kind or media_type).
func (r resultDTO) toItem(kind media.Kind) media.Item {
	item := media.Item{
		ID:           r.ID,
		Kind:         kind,
		Overview:     r.Overview,
		Rating:       media.ClampRating(r.VoteAverage),
		VoteCount:    r.VoteCount,
		Popularity:   r.Popularity,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		GenreIDs:     r.GenreIDs,
	}

	if kind == media.Series {
		item.Title = firstNonEmpty(r.Name, r.Title)
		item.OriginalTitle = firstNonEmpty(r.OriginalName, r.OriginalTitle)
		item.ReleaseDate = firstNonEmpty(r.FirstAirDate, r.ReleaseDate)
	} else {
		item.Title = firstNonEmpty(r.Title, r.Name)
		item.OriginalTitle = firstNonEmpty(r.OriginalTitle, r.OriginalName)
		item.ReleaseDate = firstNonEmpty(r.ReleaseDate, r.FirstAirDate)
	}
	return item
}

// kindFromMediaType maps multi-search media_type values. People and unknown
// types are reported as not ok.
func kindFromMediaType(mt string) (media.Kind, bool) {
	switch mt {
	case "movie":
		return media.Movie, true
	case "tv":
		return media.Series, true
	default:
		return media.Movie, false
	}
}

func parsePage(dto pageDTO, kind media.Kind) media.Page {
	page := media.Page{
		Page:         dto.Page,
		TotalPages:   dto.TotalPages,
		TotalResults: dto.TotalResults,
		Items:        make([]media.Item, 0, len(dto.Results)),
	}
	if page.TotalPages > maxPages {
		page.TotalPages = maxPages
	}
	for _, r := range dto.Results {
		if r.ID <= 0 {
			continue
		}
		page.Items = append(page.Items, r.toItem(kind))
	}
	return page
}

func parseGenres(dto genresDTO) []media.Genre {
	genres := make([]media.Genre, 0, len(dto.Genres))
	for _, g := range dto.Genres {
		genres = append(genres, media.Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}

func parseDetails(dto detailsDTO, kind media.Kind) media.Details {
	d := media.Details{
		Item:    dto.resultDTO.toItem(kind),
		IMDbID:  dto.IMDbID,
		Runtime: dto.Runtime,
		Tagline: dto.Tagline,
	}
	for _, g := range dto.Genres {
		d.Genres = append(d.Genres, media.Genre{ID: g.ID, Name: g.Name})
	}
	for _, s := range dto.Seasons {
		// Season 0 holds specials; the embed provider does not address it.
		if s.SeasonNumber <= 0 {
			continue
		}
		d.Seasons = append(d.Seasons, media.Season{
			Number:       s.SeasonNumber,
			Name:         s.Name,
			EpisodeCount: s.EpisodeCount,
		})
	}
	return d
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
