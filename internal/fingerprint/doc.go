// Package fingerprint реализует контент-хэширование входов узла
// и хранилище последних fingerprint-ов.
//
// Fingerprint — несущая конструкция мемоизации: шаг пересчитывается
// только если хэш его текущих входов отличается от сохранённого.
// Хэш стабилен относительно порядка ключей в map-ах и меняется тогда
// и только тогда, когда меняется семантически значимое содержимое.
package fingerprint
