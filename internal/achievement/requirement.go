package achievement

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
)

// RequirementKind 是成就条件的种类。集合是封闭的，新增种类需要同时修改 matches。
type RequirementKind string

const (
	KindHighScore    RequirementKind = "high_score"
	KindFastReaction RequirementKind = "fast_reaction"
	KindGamesPlayed  RequirementKind = "games_played"
	// KindUnknown 表示存储中的条件无法识别，这类成就永远不会被解锁
	KindUnknown RequirementKind = "unknown"
)

// Requirement 是成就解锁条件的带标签联合体，只有与 Kind 对应的阈值字段有意义
type Requirement struct {
	Kind              RequirementKind
	MinScore          int
	MaxReactionTimeMs float64
	MinGames          int64

	// raw 保存无法识别的原始JSON，写回存储时原样保留
	raw json.RawMessage
}

func HighScore(minScore int) Requirement {
	return Requirement{Kind: KindHighScore, MinScore: minScore}
}

func FastReaction(maxMs float64) Requirement {
	return Requirement{Kind: KindFastReaction, MaxReactionTimeMs: maxMs}
}

func GamesPlayed(minGames int64) Requirement {
	return Requirement{Kind: KindGamesPlayed, MinGames: minGames}
}

func (r Requirement) String() string {
	switch r.Kind {
	case KindHighScore:
		return fmt.Sprintf("high_score(min_score=%d)", r.MinScore)
	case KindFastReaction:
		return fmt.Sprintf("fast_reaction(max_reaction_time_ms=%g)", r.MaxReactionTimeMs)
	case KindGamesPlayed:
		return fmt.Sprintf("games_played(min_games=%d)", r.MinGames)
	default:
		return "unknown"
	}
}

// 除规范写法 {"kind": ...} 之外，还兼容旧目录里的几种写法：
// 种类放在 achievement_type 中；反应时间阈值写作 max_reaction_time 或 min_reaction_time；
// 以及完全不写种类、只写一个阈值字段。
var (
	kindKeys     = []string{"kind", "achievement_type"}
	reactionKeys = []string{"max_reaction_time_ms", "max_reaction_time", "min_reaction_time"}
)

// ParseRequirement 严格解析成就条件，格式错误时返回 Validation 错误。
// 在载入成就目录时调用，保证评估阶段不会遇到需要猜测的结构。
func ParseRequirement(data []byte) (Requirement, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Requirement{}, apperr.Validation("成就条件必须是JSON对象")
	}

	kind, err := detectKind(fields)
	if err != nil {
		return Requirement{}, err
	}

	switch kind {
	case KindHighScore:
		v, err := readNumber(fields, "min_score")
		if err != nil {
			return Requirement{}, err
		}
		if v != math.Trunc(v) {
			return Requirement{}, apperr.Validation("min_score 必须是整数")
		}
		return HighScore(int(v)), nil

	case KindFastReaction:
		for _, key := range reactionKeys {
			if _, ok := fields[key]; ok {
				v, err := readNumber(fields, key)
				if err != nil {
					return Requirement{}, err
				}
				return FastReaction(v), nil
			}
		}
		return Requirement{}, apperr.Validation("fast_reaction 缺少 max_reaction_time_ms")

	case KindGamesPlayed:
		v, err := readNumber(fields, "min_games")
		if err != nil {
			return Requirement{}, err
		}
		if v != math.Trunc(v) {
			return Requirement{}, apperr.Validation("min_games 必须是整数")
		}
		return GamesPlayed(int64(v)), nil
	}
	return Requirement{}, apperr.Validation("未知的成就条件种类: %q", kind)
}

func detectKind(fields map[string]json.RawMessage) (RequirementKind, error) {
	for _, key := range kindKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", apperr.Validation("%s 必须是字符串", key)
		}
		return RequirementKind(s), nil
	}

	// 没有显式种类时，按唯一出现的阈值字段推断
	var found []RequirementKind
	if _, ok := fields["min_score"]; ok {
		found = append(found, KindHighScore)
	}
	for _, key := range reactionKeys {
		if _, ok := fields[key]; ok {
			found = append(found, KindFastReaction)
			break
		}
	}
	if _, ok := fields["min_games"]; ok {
		found = append(found, KindGamesPlayed)
	}
	if len(found) != 1 {
		return "", apperr.Validation("无法确定成就条件种类")
	}
	return found[0], nil
}

func readNumber(fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, apperr.Validation("缺少 %s", key)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, apperr.Validation("%s 必须是数字", key)
	}
	if v < 0 {
		return 0, apperr.Validation("%s 不能为负数", key)
	}
	return v, nil
}

// decodeLenient 用于读取存储中的条件：解析失败时得到 KindUnknown，而不是报错
func decodeLenient(data []byte) Requirement {
	r, err := ParseRequirement(data)
	if err != nil {
		return Requirement{Kind: KindUnknown, raw: append(json.RawMessage(nil), data...)}
	}
	return r
}

// MarshalJSON 总是输出规范写法
func (r Requirement) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindHighScore:
		return json.Marshal(map[string]any{"kind": r.Kind, "min_score": r.MinScore})
	case KindFastReaction:
		return json.Marshal(map[string]any{"kind": r.Kind, "max_reaction_time_ms": r.MaxReactionTimeMs})
	case KindGamesPlayed:
		return json.Marshal(map[string]any{"kind": r.Kind, "min_games": r.MinGames})
	}
	if len(r.raw) > 0 && json.Valid(r.raw) {
		return r.raw, nil
	}
	return json.Marshal(map[string]any{"kind": KindUnknown})
}

func (r *Requirement) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRequirement(data)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan 实现 sql.Scanner
func (r *Requirement) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*r = Requirement{Kind: KindUnknown}
	case []byte:
		*r = decodeLenient(v)
	case string:
		*r = decodeLenient([]byte(v))
	default:
		return fmt.Errorf("无法将 %T 扫描为成就条件", value)
	}
	return nil
}

// Value 实现 driver.Valuer
func (r Requirement) Value() (driver.Value, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
