// 包 sink：访问记录的追加式落地目标（文件 / Redis 列表 / PostgreSQL 表）
// 约束：每次 Append 写入一整行；实现需保证并发追加时行不交错，不做排队、批量与重试
package sink

import "context"

type Sink interface {
	Append(ctx context.Context, line string) error
	Close() error
}
