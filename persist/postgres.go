package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/save"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Postgres stores characters and guild configs as JSONB documents. Saves
// overwrite the whole document; concurrent writers to the same guild config
// follow last-write-wins.
type Postgres struct {
	db           *DB
	defaultPrize int
}

func NewPostgres(db *DB, defaultPrize int) *Postgres {
	return &Postgres{db: db, defaultPrize: defaultPrize}
}

// LoadCharacter loads a character. With fields set only those top-level
// keys are decoded; the rest keep their defaults.
func (p *Postgres) LoadCharacter(ctx context.Context, id string, fields ...string) (*types.Character, error) {
	var data []byte
	err := p.db.Pool.QueryRow(ctx, `SELECT data FROM characters WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("character %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load character %s: %w", id, err)
	}
	return save.DecodeCharacter(data, fields...)
}

func (p *Postgres) SaveCharacter(ctx context.Context, c *types.Character) error {
	data, err := save.EncodeCharacter(c)
	if err != nil {
		return fmt.Errorf("encode character %s: %w", c.ID, err)
	}
	_, err = p.db.Pool.Exec(ctx,
		`INSERT INTO characters (id, guild_id, name, map, data, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (id) DO UPDATE SET
			guild_id = EXCLUDED.guild_id,
			name = EXCLUDED.name,
			map = EXCLUDED.map,
			data = EXCLUDED.data,
			updated_at = NOW()`,
		c.ID, c.GuildID, c.Name, c.Map, data,
	)
	if err != nil {
		return fmt.Errorf("save character %s: %w", c.ID, err)
	}
	return nil
}

func (p *Postgres) LoadGuildConfig(ctx context.Context, guildID string) (*types.GuildConfig, error) {
	var data []byte
	err := p.db.Pool.QueryRow(ctx, `SELECT data FROM guild_configs WHERE guild_id = $1`, guildID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("guild %s: %w", guildID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}
	return save.DecodeGuild(data, p.defaultPrize)
}

func (p *Postgres) SaveGuildConfig(ctx context.Context, g *types.GuildConfig) error {
	data, err := save.EncodeGuild(g)
	if err != nil {
		return fmt.Errorf("encode guild %s: %w", g.GuildID, err)
	}
	_, err = p.db.Pool.Exec(ctx,
		`INSERT INTO guild_configs (guild_id, data, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (guild_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		g.GuildID, data,
	)
	if err != nil {
		return fmt.Errorf("save guild %s: %w", g.GuildID, err)
	}
	return nil
}

// ListCharacters returns every character in a guild, by ID.
func (p *Postgres) ListCharacters(ctx context.Context, guildID string) ([]*types.Character, error) {
	return p.query(ctx, `SELECT data FROM characters WHERE guild_id = $1 ORDER BY id`, guildID)
}

// CharactersOnMap returns the guild's characters standing on mapName.
func (p *Postgres) CharactersOnMap(ctx context.Context, guildID, mapName string) ([]*types.Character, error) {
	return p.query(ctx, `SELECT data FROM characters WHERE guild_id = $1 AND map = $2 ORDER BY id`, guildID, mapName)
}

func (p *Postgres) query(ctx context.Context, sql string, args ...any) ([]*types.Character, error) {
	rows, err := p.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query characters: %w", err)
	}
	defer rows.Close()

	var out []*types.Character
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		c, err := save.DecodeCharacter(data)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
