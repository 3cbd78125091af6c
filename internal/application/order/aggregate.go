package order

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xiebiao/bookorder/internal/domain/book"
	"github.com/xiebiao/bookorder/internal/domain/order"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

// AggregateDemand 汇总一批订单对每本图书的需求量
// 同一本书出现在多个订单中时数量累加
func AggregateDemand(books ...order.Books) map[string]int {
	demand := make(map[string]int)
	for _, b := range books {
		for bookID, qty := range b {
			demand[bookID] += qty
		}
	}
	return demand
}

// DistinctUserIDs 去重后的user_id(保持首次出现的顺序)
func DistinctUserIDs(reqs []order.CreateRequest) []string {
	seen := make(map[string]struct{}, len(reqs))
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	return ids
}

// DistinctBookIDs 需求中的book_id(排序)
func DistinctBookIDs(demand map[string]int) []string {
	ids := make([]string, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MissingIDs 返回requested中不在found里的ID(保持requested顺序)
func MissingIDs(requested, found []string) []string {
	present := make(map[string]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []string
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// CheckStock 校验库存是否满足需求
// 所有不足的图书按book_id排序列在错误信息中;需求中有图书不在found里视为不存在
func CheckStock(found []*book.Book, demand map[string]int) error {
	stock := make(map[string]int, len(found))
	for _, b := range found {
		stock[b.BookID] = b.StockCount
	}

	var shortages []string
	for _, bookID := range DistinctBookIDs(demand) {
		have, ok := stock[bookID]
		if !ok {
			return apperrors.Newf(book.ErrBookNotFound, "图书不存在: %s", bookID)
		}
		if need := demand[bookID]; have < need {
			shortages = append(shortages, fmt.Sprintf("%s(库存%d,需要%d)", bookID, have, need))
		}
	}

	if len(shortages) > 0 {
		return apperrors.Newf(book.ErrInsufficientStock, "库存不足: %s", strings.Join(shortages, ", "))
	}
	return nil
}

// notFound 按缺失ID生成带细节的NotFound错误
func notFound(base *apperrors.AppError, what string, missing []string) error {
	return apperrors.Newf(base, "%s不存在: %s", what, strings.Join(missing, ", "))
}

func bookIDsOf(books []*book.Book) []string {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.BookID
	}
	return ids
}

func orderIDsOf(orders []*order.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	return ids
}

// inRequestOrder 按请求中的order_id顺序排列查询结果
func inRequestOrder(orders []*order.Order, ids []string) []*order.Order {
	byID := make(map[string]*order.Order, len(orders))
	for _, o := range orders {
		byID[o.OrderID] = o
	}

	sorted := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			sorted = append(sorted, o)
		}
	}
	return sorted
}
