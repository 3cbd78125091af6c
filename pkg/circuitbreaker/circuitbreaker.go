// Package circuitbreaker 保护对外部依赖(消息队列)的调用
//
// 状态机:
//
//	CLOSED ──连续失败达到阈值──▶ OPEN ──Timeout到期──▶ HALF_OPEN
//	   ▲                                                 │
//	   └──────────────试探请求成功───────────────────────┘
//	                  试探请求失败 ──▶ OPEN
//
// 订单事件在事务提交后发布,RabbitMQ不可用时熔断器快速失败,
// 请求不用每次都等待连接超时。
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xiebiao/bookorder/pkg/metrics"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行
	StateOpen                  // 拒绝所有请求
	StateHalfOpen              // 放行少量试探请求
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpenState 熔断器打开时返回
var ErrOpenState = errors.New("circuit breaker is open")

// Options 熔断器配置
type Options struct {
	// MaxRequests 半开状态允许的试探请求数
	MaxRequests uint32

	// Interval 关闭状态下清零统计的周期,0表示不清零
	Interval time.Duration

	// Timeout 打开状态持续多久后进入半开
	Timeout time.Duration

	// ReadyToTrip 关闭状态下每次失败后调用,返回true则打开
	ReadyToTrip func(counts Counts) bool

	// OnStateChange 状态切换回调(持有锁时调用,不要在里面访问熔断器)
	OnStateChange func(name string, from, to State)
}

// DefaultOptions 连续失败5次打开,30秒后试探
func DefaultOptions() Options {
	return Options{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRate 失败率
func (c Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	name string
	opts Options

	mu         sync.Mutex
	state      State
	generation uint64 // 每次状态切换递增,丢弃旧窗口里请求的结果
	counts     Counts
	expiry     time.Time
}

// New 创建熔断器
func New(name string, opts Options) *CircuitBreaker {
	def := DefaultOptions()
	if opts.MaxRequests == 0 {
		opts.MaxRequests = def.MaxRequests
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.ReadyToTrip == nil {
		opts.ReadyToTrip = def.ReadyToTrip
	}

	cb := &CircuitBreaker{
		name:  name,
		opts:  opts,
		state: StateClosed,
	}
	cb.resetWindow(time.Now())
	metrics.SetCircuitBreakerState(name, float64(StateClosed))
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute 通过熔断器执行fn
// 打开状态下不调用fn,直接返回ErrOpenState
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	generation, err := cb.before()
	if err != nil {
		metrics.IncCircuitBreakerRequest(cb.name, metrics.ResultRejected)
		return err
	}

	err = fn(ctx)

	// context取消不是下游的问题,不计入失败
	failed := err != nil && !errors.Is(err, context.Canceled)
	cb.after(generation, !failed)

	if failed {
		metrics.IncCircuitBreakerRequest(cb.name, metrics.ResultFailure)
	} else {
		metrics.IncCircuitBreakerRequest(cb.name, metrics.ResultSuccess)
	}
	return err
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.current(time.Now())
	return state
}

// Counts 当前统计
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}

func (cb *CircuitBreaker) before() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.current(time.Now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.opts.MaxRequests:
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) after(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.current(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.success()
		if state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.opts.MaxRequests {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.failure()
	switch state {
	case StateClosed:
		if cb.opts.ReadyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// current 根据时间推进状态,调用方持有锁
func (cb *CircuitBreaker) current(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.resetWindow(now)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++

	switch state {
	case StateClosed:
		cb.resetWindow(now)
	case StateOpen:
		cb.counts = Counts{}
		cb.expiry = now.Add(cb.opts.Timeout)
	case StateHalfOpen:
		cb.counts = Counts{}
		cb.expiry = time.Time{}
	}

	metrics.SetCircuitBreakerState(cb.name, float64(state))
	if cb.opts.OnStateChange != nil {
		cb.opts.OnStateChange(cb.name, prev, state)
	}
}

func (cb *CircuitBreaker) resetWindow(now time.Time) {
	cb.counts = Counts{}
	if cb.opts.Interval > 0 {
		cb.expiry = now.Add(cb.opts.Interval)
	} else {
		cb.expiry = time.Time{}
	}
}
