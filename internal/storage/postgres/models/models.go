package models

import "amdb/proj/internal/storage/postgres"

type Models struct {
	Movie  *MovieModel
	Review *ReviewModel
	User   *UserModel
}

func New(db *postgres.PostgresDB, titleCollation string) *Models {
	return &Models{
		Movie:  &MovieModel{DB: db.Conn, TitleCollation: titleCollation},
		Review: &ReviewModel{DB: db.Conn},
		User:   &UserModel{DB: db.Conn},
	}
}
