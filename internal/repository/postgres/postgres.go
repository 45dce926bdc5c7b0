package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// таймаут одной попытки подключения; истечение трактуется как ошибка подключения
const connectTimeout = 10 * time.Second

// ConnCache — ленивый процессный кэш подключения к PostgreSQL
// пул создаётся при первом вызове Acquire и живёт до конца процесса;
// повторного подключения при ошибках нет, перезапуск процесса — единственный
// способ обновить неудачно стартовавшее соединение
type ConnCache struct {
	dsn  string
	log  *slog.Logger
	conn atomic.Pointer[pgxpool.Pool]

	// схлопывает конкурентные первые вызовы в одну попытку подключения
	group singleflight.Group

	// подменяется в тестах
	connect func(ctx context.Context, dsn string) (*pgxpool.Pool, error)
}

// NewConnCache создаёт кэш подключения
// строка подключения читается один раз здесь, само подключение откладывается
// до первого Acquire
func NewConnCache(dsn string, log *slog.Logger) *ConnCache {
	return &ConnCache{
		dsn:     dsn,
		log:     log,
		connect: connect,
	}
}

// Acquire возвращает пул соединений, устанавливая его при первом вызове
// безопасен для конкурентного вызова из многих запросов: реальное подключение
// выполняет ровно один вызов, остальные ждут его результата
func (c *ConnCache) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	const op = "repository.postgres.ConnCache.Acquire"

	// быстрый путь: соединение уже установлено
	if pool := c.conn.Load(); pool != nil {
		return pool, nil
	}

	ch := c.group.DoChan("connect", func() (any, error) {
		// повторная проверка внутри полёта: предыдущий полёт мог успеть
		// сохранить пул между нашим Load и DoChan
		if pool := c.conn.Load(); pool != nil {
			return pool, nil
		}

		c.log.Info("establishing database connection")

		// подключение не привязано к контексту одного вызова,
		// его результатом пользуются все ожидающие
		connectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := c.connect(connectCtx, c.dsn)
		if err != nil {
			// неудачная попытка не кэшируется — следующий вызов начнёт заново
			return nil, err
		}

		c.conn.Store(pool)
		return pool, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, res.Err)
		}
		return res.Val.(*pgxpool.Pool), nil
	case <-ctx.Done():
		// попытка продолжается для остальных ожидающих
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// Close закрывает пул при завершении процесса
func (c *ConnCache) Close() {
	if pool := c.conn.Load(); pool != nil {
		pool.Close()
	}
}

// connect создаёт и проверяет новый пул соединений с PostgreSQL
func connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	const op = "repository.postgres.connect"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse pgx config: %w", op, err)
	}

	// настройка пула соединений
	poolConfig.MaxConns = 10
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create connection pool: %w", op, err)
	}

	// проверяем, что соединение установлено
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return dbpool, nil
}
